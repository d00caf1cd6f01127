package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonvault"
)

var (
	deleteType  string
	deleteWhere []string
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a document, or every document of --type matching --where",
	Long: `Delete removes a single document by id.

With --type it removes every document of that type matching all --where
filters instead, persisting the database once at the end.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 1 {
			if deleteType != "" || len(deleteWhere) > 0 {
				return fmt.Errorf("%w: an id cannot be combined with --type or --where", jsonvault.ErrInvalidInput)
			}
			svc, err := openDB(ctx, false)
			if err != nil {
				return err
			}
			if err := svc.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Document deleted: %s\n", args[0])
			return nil
		}

		if deleteType == "" {
			return fmt.Errorf("%w: pass an id or --type", jsonvault.ErrInvalidInput)
		}
		filters, err := parseWhere(deleteWhere)
		if err != nil {
			return err
		}

		svc, err := openDB(ctx, false)
		if err != nil {
			return err
		}
		matched, err := svc.Find(ctx, deleteType, filters)
		if err != nil {
			return err
		}
		if err := svc.DeleteByCriteria(ctx, deleteType, filters); err != nil {
			return err
		}
		fmt.Printf("Documents deleted: %d\n", len(matched))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVar(&deleteType, "type", "", "Delete every matching document of this type")
	deleteCmd.Flags().StringArrayVar(&deleteWhere, "where", nil, "Filter as prop=value (repeatable, requires --type)")
}
