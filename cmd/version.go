package cmd

import (
	"fmt"

	"github.com/openrhythm/rox/constants"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Prints the version",
	Long:  `Prints the version`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(constants.Version)
	},
}
