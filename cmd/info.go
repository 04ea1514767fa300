package cmd

import (
	"fmt"

	"github.com/openrhythm/rox/analysis"
	"github.com/openrhythm/rox/codec"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

var infoCmd = &cobra.Command{
	Use:   "info <chart>",
	Short: "Prints chart metadata and stats",
	Long:  `Prints chart metadata and stats`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		info(args[0])
	},
}

func info(path string) {
	chart, err := codec.DecodeFile(path)
	if err != nil {
		panic("Could not decode chart because: " + err.Error())
	}

	m := chart.Metadata
	fmt.Printf("title: %v\n", m.Title)
	fmt.Printf("artist: %v\n", m.Artist)
	fmt.Printf("creator: %v\n", m.Creator)
	fmt.Printf("difficulty: %v (%.2f)\n", m.DifficultyName, m.DifficultyValue)
	fmt.Printf("keys: %v\n", chart.KeyCount)
	fmt.Printf("notes: %v\n", chart.NoteCount())
	fmt.Printf("duration: %.1fs\n", float64(chart.DurationUs())/1e6)
	fmt.Printf("nps: %.2f\n", analysis.Nps(chart))
	fmt.Printf("peak nps: %.2f\n", analysis.HighestNps(chart, 5))
	fmt.Printf("bpm: %.0f-%.0f, mostly %.0f\n",
		analysis.BpmMin(chart), analysis.BpmMax(chart), analysis.BpmMode(chart))
	fmt.Printf("hash: %v\n", analysis.ShortHash(chart))
}
