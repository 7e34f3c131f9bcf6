package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newIntentsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "intents",
		Short: "List the tags of the intent catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, core, err := loadCore(cmd)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(core.Intents.List())
			}
			for _, item := range core.Intents.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d patterns, %d responses\n", item.Tag, len(item.Patterns), len(item.Responses))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	return cmd
}
