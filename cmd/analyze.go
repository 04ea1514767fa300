package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/openrhythm/rox/codec"
	"github.com/openrhythm/rox/pattern"
	"github.com/spf13/cobra"
)

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the analysis as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <chart>",
	Short: "Analyzes chart patterns",
	Long:  `Builds the pattern timeline of a chart and prints it`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		analyze(args[0])
	},
}

func analyze(path string) {
	chart, err := codec.DecodeFile(path)
	if err != nil {
		panic("Could not decode chart because: " + err.Error())
	}
	res, err := pattern.AnalyzeDefault(chart)
	if err != nil {
		panic("Could not analyze chart because: " + err.Error())
	}

	if analyzeJSON {
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			panic("Could not marshal analysis because: " + err.Error())
		}
		fmt.Println(string(out))
		return
	}

	for _, e := range res.Timeline {
		fmt.Printf("%9.2fs %9.2fs  %-12v %5v notes  %.0f bpm\n",
			float64(e.StartTimeUs)/1e6, float64(e.EndTimeUs)/1e6,
			e.Pattern, e.NoteCount, e.AvgBpm)
	}
	fmt.Printf("%v sections, %v notes\n", len(res.Timeline), res.Timeline.TotalNotes())
}
