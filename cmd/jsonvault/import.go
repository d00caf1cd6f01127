package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/jsonvault"
)

var importCmd = &cobra.Command{
	Use:   "import <type> <glob>",
	Short: "Save every object found in matching JSON or YAML files as a new document",
	Long: `Import expands <glob> (with ** support) and reads each .json, .yaml or .yml
file. A file holds a single object or a list of objects; each becomes a new
document of <type>. Any id or doc_type in the files is discarded.`,
	Example: `  jsonvault import user 'seed/**/*.yaml'`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		docType, pattern := args[0], args[1]

		files, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return fmt.Errorf("%w: bad glob %q: %v", jsonvault.ErrInvalidInput, pattern, err)
		}
		if len(files) == 0 {
			return fmt.Errorf("%w: no files match %q", jsonvault.ErrInvalidInput, pattern)
		}

		var docs []jsonvault.Document
		for _, file := range files {
			found, err := readDocuments(file)
			if err != nil {
				return err
			}
			slog.Debug("read import file", "path", file, "count", len(found))
			docs = append(docs, found...)
		}

		svc, err := openDB(cmd.Context(), false)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			delete(doc, "id")
			delete(doc, "doc_type")
			if _, err := svc.Save(cmd.Context(), docType, doc); err != nil {
				return err
			}
		}

		fmt.Printf("Imported %d documents from %d files\n", len(docs), len(files))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// readDocuments decodes a JSON or YAML file holding one object or a list of objects.
func readDocuments(path string) ([]jsonvault.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw any
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("%w: %s: unsupported extension %q", jsonvault.ErrInvalidInput, path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", jsonvault.ErrDecode, path, err)
	}

	switch v := raw.(type) {
	case map[string]any:
		return []jsonvault.Document{v}, nil
	case []any:
		docs := make([]jsonvault.Document, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: %s: item %d is not an object", jsonvault.ErrInvalidInput, path, i)
			}
			docs = append(docs, obj)
		}
		return docs, nil
	default:
		return nil, fmt.Errorf("%w: %s: expected an object or a list of objects", jsonvault.ErrInvalidInput, path)
	}
}
