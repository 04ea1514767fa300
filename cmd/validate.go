package cmd

import (
	"fmt"
	"os"

	"github.com/openrhythm/rox/codec"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <chart>...",
	Short: "Validates charts",
	Long:  `Decodes every given chart and reports the ones that are broken`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			panic("Need at least 1 arg...")
		}
		validate(args)
	},
}

func validate(paths []string) {
	var failed int
	for _, path := range paths {
		_, err := codec.DecodeFile(path)
		if err != nil {
			fmt.Printf("%v: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("%v: OK\n", path)
	}
	if failed > 0 {
		fmt.Printf("%v of %v charts failed\n", failed, len(paths))
		os.Exit(1)
	}
}
