package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jsonvault"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print a new random encryption key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := jsonvault.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
