package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonvault"
)

var saveData string

var saveCmd = &cobra.Command{
	Use:   "save <type>",
	Short: "Insert a document, or update it when --data carries an id",
	Example: `  jsonvault save user --data '{"name":"Ann","age":30}'
  jsonvault save user --data '{"id":"<id>","age":31}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var content jsonvault.Document
		if err := json.Unmarshal([]byte(saveData), &content); err != nil {
			return fmt.Errorf("%w: --data must be a JSON object: %v", jsonvault.ErrInvalidInput, err)
		}
		if content == nil {
			return fmt.Errorf("%w: --data must be a JSON object", jsonvault.ErrInvalidInput)
		}

		svc, err := openDB(cmd.Context(), false)
		if err != nil {
			return err
		}

		doc, err := svc.Save(cmd.Context(), args[0], content)
		if err != nil {
			return err
		}

		out, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVar(&saveData, "data", "", "Document content as a JSON object")
	_ = saveCmd.MarkFlagRequired("data")
}
