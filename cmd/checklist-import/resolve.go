package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codyseavey/card-checklist/internal/services"
)

type resolveOutput struct {
	Attributes services.ResolvedAttributes `json:"attributes"`
	Issues     []services.Issue            `json:"issues"`
}

func newResolveCmd() *cobra.Command {
	var season string

	cmd := &cobra.Command{
		Use:   "resolve LABEL...",
		Short: "Resolve a single checklist label and print the attributes as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, _, err := loadCatalog()
			if err != nil {
				return err
			}
			if cat.IsEmpty() {
				return services.ErrCatalogNotBuilt
			}

			issues := services.NewIssueLog(logger)
			attrs := services.NewAttributeResolver(cat).Resolve(strings.Join(args, " "), season, issues)

			out := resolveOutput{Attributes: attrs, Issues: issues.Issues()}
			if out.Issues == nil {
				out.Issues = []services.Issue{}
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVar(&season, "season", "", "season of the card, e.g. 1994-95")
	return cmd
}
