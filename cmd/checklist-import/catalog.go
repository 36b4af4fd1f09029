package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Load the reference dumps and print how many keys each table holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, warnings, err := loadCatalog()
			if err != nil {
				return err
			}

			counts := cat.Counts()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Manufacturers: %d\n", counts.Manufacturers)
			fmt.Fprintf(out, "Brands:        %d\n", counts.Brands)
			fmt.Fprintf(out, "Themes:        %d\n", counts.Themes)
			fmt.Fprintf(out, "Variants:      %d\n", counts.Variants)
			fmt.Fprintf(out, "Default variant id: %d\n", cat.DefaultVariantID())
			if len(warnings) > 0 {
				fmt.Fprintf(out, "Warnings: %d\n", len(warnings))
			}
			return nil
		},
	}
}
