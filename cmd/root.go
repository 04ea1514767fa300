package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rox",
	Short: "Rhythm chart toolkit",
	Long:  `Converts, validates and analyzes vertical-scroll rhythm charts.`,
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
