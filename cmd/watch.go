package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/openrhythm/rox/watch"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Watches a directory and converts charts",
	Long:  `Watches a directory tree and converts community charts to .rox as they change`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			panic("Need 1 arg...")
		}
		runWatch(args[0])
	},
}

func runWatch(root string) {
	w, err := watch.New(root)
	if err != nil {
		panic("Could not start watcher because: " + err.Error())
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	w.Run(ctx)
}
