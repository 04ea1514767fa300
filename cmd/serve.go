package cmd

import (
	"github.com/openrhythm/rox/constants"
	"github.com/openrhythm/rox/registry"
	"github.com/openrhythm/rox/server"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the chart API",
	Long:  `Serves the chart analysis and conversion API`,
	Run: func(cmd *cobra.Command, args []string) {
		serve()
	},
}

func serve() {
	reg, err := registry.New()
	if err != nil {
		panic("Could not create registry client because: " + err.Error())
	}
	err = server.New(reg).Run(constants.GetServerAddr())
	if err != nil {
		panic("Could not serve because: " + err.Error())
	}
}
