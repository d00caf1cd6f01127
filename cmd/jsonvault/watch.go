package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonvault/pkg/adapters/fs"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print document counts whenever the database file changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		report := func() {
			fmt.Printf("--- %s\n", time.Now().Format(time.TimeOnly))
			if err := printStats(ctx, os.Stdout); err != nil {
				slog.Error("reading database", "path", dbPath, "error", err)
			}
		}
		report()

		return fs.WatchFile(ctx, dbPath, watchDebounce, slog.Default(), report)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", fs.DefaultDebounce, "Quiet period before reporting a change")
}
