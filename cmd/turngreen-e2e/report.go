package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ternarybob/turngreen-e2e/internal/report"
)

func (a *app) reportCmd() *cobra.Command {
	var resultsDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render index.html from an existing results directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := resultsDir
			if dir == "" {
				dir = a.config.ResultsPath()
			}

			results, err := report.LoadResults(dir)
			if err != nil {
				return err
			}
			path, err := report.RenderSummary(dir)
			if err != nil {
				return err
			}

			s := report.Summarize(results)
			fmt.Fprintf(cmd.OutOrStdout(), "%d attempts: %d passed, %d failed, %d broken, %d skipped\nReport: %s\n",
				s.Total, s.Passed, s.Failed, s.Broken, s.Skipped, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Results directory (defaults to the configured one)")
	return cmd
}
