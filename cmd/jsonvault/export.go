package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonvault"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print every document, decrypted, as JSON or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svc, err := openDB(ctx, true)
		if err != nil {
			return err
		}

		types, err := svc.Types(ctx)
		if err != nil {
			return err
		}

		docs := make([]jsonvault.Document, 0)
		for _, docType := range slices.Sorted(maps.Keys(types)) {
			found, err := svc.Find(ctx, docType, nil)
			if err != nil {
				return err
			}
			docs = append(docs, found...)
		}

		return writeExport(os.Stdout, exportFormat, docs)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json or yaml")
}

// writeExport renders docs as an envelope in the requested format.
func writeExport(w io.Writer, format string, docs []jsonvault.Document) error {
	envelope := map[string]any{"docs": docs}

	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(envelope)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(envelope); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("%w: unknown format %q (json or yaml)", jsonvault.ErrInvalidInput, format)
	}
}
