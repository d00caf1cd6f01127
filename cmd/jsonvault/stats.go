package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document counts per type and the size of the database file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printStats(cmd.Context(), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(ctx context.Context, w io.Writer) error {
	svc, err := openDB(ctx, true)
	if err != nil {
		return err
	}
	types, err := svc.Types(ctx)
	if err != nil {
		return err
	}

	var size uint64
	if info, err := os.Stat(dbPath); err == nil {
		size = uint64(info.Size())
	}

	fmt.Fprintf(w, "%s (%s, %s)\n", dbPath, humanize.Bytes(size), modeLabel())
	writeCounts(w, types)
	return nil
}

func modeLabel() string {
	if encrypted {
		return "encrypted"
	}
	return "plaintext"
}

// writeCounts prints one "type count" line per doc_type followed by the total.
func writeCounts(w io.Writer, types map[string]int) {
	total := 0
	for _, docType := range slices.Sorted(maps.Keys(types)) {
		fmt.Fprintf(w, "  %-20s %s\n", docType, humanize.Comma(int64(types[docType])))
		total += types[docType]
	}
	fmt.Fprintf(w, "  %-20s %s\n", "total", humanize.Comma(int64(total)))
}
