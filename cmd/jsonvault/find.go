package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	findJSON  bool
	findWhere []string
)

var findCmd = &cobra.Command{
	Use:   "find <type>",
	Short: "List the documents of a type matching every --where filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseWhere(findWhere)
		if err != nil {
			return err
		}

		svc, err := openDB(cmd.Context(), true)
		if err != nil {
			return err
		}

		docs, err := svc.Find(cmd.Context(), args[0], filters)
		if err != nil {
			return err
		}

		if findJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(docs)
		}

		for _, doc := range docs {
			line, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", doc.ID(), line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().BoolVar(&findJSON, "json", false, "Output in JSON format")
	findCmd.Flags().StringArrayVar(&findWhere, "where", nil, "Filter as prop=value (repeatable, combined with AND)")
}
