package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vey/vey-go/pkg/vey"
)

var pidKeys = []string{"country", "admin1", "admin2", "locality"}

var pidCmd = &cobra.Command{
	Use:   "pid",
	Short: "Encode address components into a place identifier",
	Long:  "Joins the given components in country, admin1, admin2, locality order. Components that are not given are skipped.",
	Example: `  vey pid --country US --admin1 CA --admin2 "Santa Clara" --locality "Mountain View"
  vey pid --country JP --locality Shibuya`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Pure local computation: no config or API key needed.
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		components := make(map[string]string, len(pidKeys))
		for _, key := range pidKeys {
			if cmd.Flags().Changed(key) {
				v, _ := cmd.Flags().GetString(key)
				components[key] = v
			}
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), vey.EncodePID(components))
		return err
	},
}

func init() {
	for _, key := range pidKeys {
		pidCmd.Flags().String(key, "", key+" component")
	}
	rootCmd.AddCommand(pidCmd)
}
