package cmd

import (
	"fmt"
	"strings"

	"github.com/openrhythm/rox/codec"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <src> <dst>",
	Short: "Converts a chart between formats",
	Long: `Converts a chart between formats, picking codecs by file extension.
Supported extensions: ` + strings.Join(codec.Extensions(), ", "),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			panic("Need 2 args...")
		}
		convert(args[0], args[1])
	},
}

func convert(src, dst string) {
	chart, err := codec.DecodeFile(src)
	if err != nil {
		panic("Could not decode chart because: " + err.Error())
	}
	err = codec.EncodeFile(chart, dst)
	if err != nil {
		panic("Could not encode chart because: " + err.Error())
	}
	fmt.Printf("Wrote %v\n", dst)
}
