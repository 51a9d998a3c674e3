package main

import (
	"github.com/spf13/cobra"
	"github.com/ternarybob/turngreen-e2e/internal/runner"
	"github.com/ternarybob/turngreen-e2e/internal/scenario"
)

func (a *app) scheduleCmd() *cobra.Command {
	var (
		spec string
		tags []string
	)

	cmd := &cobra.Command{
		Use:   "schedule [scenario...]",
		Short: "Run scenarios on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := scenario.Select(args, tags)
			if err != nil {
				return err
			}
			if spec == "" {
				spec = a.config.Schedule.Cron
			}

			r, closeStore, err := a.newRunner()
			if err != nil {
				return err
			}
			defer closeStore()

			return runner.NewScheduler(r, defs, a.logger).Run(cmd.Context(), spec)
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "5-field cron expression, at least 5 minutes apart (defaults to schedule.cron)")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Schedule scenarios with this tag (repeatable)")
	return cmd
}
