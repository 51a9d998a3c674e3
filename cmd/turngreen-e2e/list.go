package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/ternarybob/turngreen-e2e/internal/scenario"
	"gopkg.in/yaml.v3"
)

func (a *app) listCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs := scenario.Catalog()

			switch output {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(defs); err != nil {
					return fmt.Errorf("encode catalog: %w", err)
				}
				return enc.Close()
			case "text", "":
				rows := make([][]string, 0, len(defs))
				for _, d := range defs {
					rows = append(rows, []string{d.Suite, d.Name, strings.Join(d.Tags, ", ")})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Suite", "Scenario", "Tags"}, rows))
				return nil
			default:
				return fmt.Errorf("unknown output format %q (want text or yaml)", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or yaml")
	return cmd
}
