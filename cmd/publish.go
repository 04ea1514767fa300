package cmd

import (
	"fmt"
	"os"

	"github.com/openrhythm/rox/analysis"
	"github.com/openrhythm/rox/bucket"
	"github.com/openrhythm/rox/codec"
	"github.com/openrhythm/rox/registry"
	"github.com/openrhythm/rox/util"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish <chart|dir>...",
	Short: "Publishes charts",
	Long:  `Converts charts to the native format and uploads them to the chart bucket and registry. Directories are walked for chart files.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			panic("Need at least 1 arg...")
		}
		publish(args)
	},
}

func gatherPublishPaths(args []string) []string {
	var exts []string
	for _, ext := range codec.Extensions() {
		exts = append(exts, "."+ext)
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			panic("Could not stat " + arg + " because: " + err.Error())
		}
		if info.IsDir() {
			paths = append(paths, util.GatherChartPaths(arg, exts, 0)...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths
}

func publish(args []string) {
	bkt, err := bucket.New()
	if err != nil {
		panic("Could not create bucket client because: " + err.Error())
	}
	reg, err := registry.New()
	if err != nil {
		panic("Could not create registry client because: " + err.Error())
	}
	rox, err := codec.ForPath("chart.rox")
	if err != nil {
		panic("Could not resolve native codec because: " + err.Error())
	}

	paths := gatherPublishPaths(args)
	for i, path := range paths {
		fmt.Printf("Processing %v of %v charts\n", i+1, len(paths))
		chart, err := codec.DecodeFile(path)
		if err != nil {
			fmt.Printf("Skipping %v because: %v\n", path, err)
			continue
		}
		data, err := rox.Encode(chart)
		if err != nil {
			fmt.Printf("Skipping %v because: %v\n", path, err)
			continue
		}

		id := bucket.NewChartID()
		key, err := bkt.UploadChart(id, data)
		if err != nil {
			panic("Could not upload chart because: " + err.Error())
		}
		rec := registry.ChartRecord{
			ID:       id,
			Title:    chart.Metadata.Title,
			Artist:   chart.Metadata.Artist,
			Creator:  chart.Metadata.Creator,
			KeyCount: chart.KeyCount,
			Hash:     analysis.Hash(chart),
			Key:      key,
		}
		err = reg.PutChart(rec)
		if err != nil {
			panic("Could not register chart because: " + err.Error())
		}
		fmt.Printf("%v %v\n", id, path)
	}
}
