package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ternarybob/turngreen-e2e/internal/browser"
	"github.com/ternarybob/turngreen-e2e/internal/common"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/report"
	"github.com/ternarybob/turngreen-e2e/internal/runner"
	"github.com/ternarybob/turngreen-e2e/internal/scenario"
	"github.com/ternarybob/turngreen-e2e/internal/storage/badger"
)

func (a *app) runCmd() *cobra.Command {
	var (
		tags       []string
		workers    int
		retries    int
		headless   bool
		resultsDir string
		clean      bool
	)

	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios (all when none are named)",
		Long: `Run scenarios against BASE_URL in fresh browser sessions.

Scenarios are selected by name (exact or substring) or by --tag. FUSION_EMAIL
and FUSION_PASSWORD must be set in the environment or a .env file. The exit
status is non-zero when any scenario does not pass.`,
		PreRun: func(cmd *cobra.Command, args []string) {
			flags := common.FlagOverrides{}
			if cmd.Flags().Changed("workers") {
				flags.Workers = &workers
			}
			if cmd.Flags().Changed("retries") {
				flags.Retries = &retries
			}
			if cmd.Flags().Changed("headless") {
				flags.Headless = &headless
			}
			if cmd.Flags().Changed("results-dir") {
				flags.ResultsDir = &resultsDir
			}
			common.ApplyFlagOverrides(a.config, flags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := scenario.Select(args, tags)
			if err != nil {
				return err
			}

			if clean {
				if err := os.RemoveAll(a.config.ResultsPath()); err != nil {
					return fmt.Errorf("clean results directory: %w", err)
				}
			}

			r, closeStore, err := a.newRunner()
			if err != nil {
				return err
			}
			defer closeStore()

			summary, err := r.Run(cmd.Context(), defs)
			if err != nil {
				return err
			}

			printOutcomes(cmd, summary)
			if !summary.Passed() {
				return fmt.Errorf("%d of %d scenarios did not pass", failedCount(summary), len(summary.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Run scenarios with this tag (repeatable)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent scenarios, each in its own browser")
	cmd.Flags().IntVarP(&retries, "retries", "r", 0, "Extra attempts for a failed scenario")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a window")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory for result files and attachments")
	cmd.Flags().BoolVar(&clean, "clean", false, "Remove previous results before running")
	return cmd
}

// newRunner wires the runner from configuration. The returned func closes
// the run history store.
func (a *app) newRunner() (*runner.Runner, func(), error) {
	c := a.config

	writer, err := report.NewWriter(c.ResultsPath(), a.masker.Redact, a.logger)
	if err != nil {
		return nil, nil, err
	}

	var store interfaces.RunStorage
	closeStore := func() {}
	if c.Storage.Badger.Path != "" {
		db, err := badger.NewBadgerDB(a.logger, &c.Storage.Badger)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Run history disabled")
		} else {
			store = badger.NewRunStorage(db, a.logger)
			closeStore = func() {
				if err := store.Close(); err != nil {
					a.logger.Warn().Err(err).Msg("Failed to close run history")
				}
			}
		}
	}

	r := runner.New(runner.Options{
		Environment:     c.Environment,
		BaseURL:         c.BaseURL,
		ServicePath:     c.ServicePath,
		Workers:         c.Workers,
		Retries:         c.Retries,
		ScenarioTimeout: c.ScenarioTimeoutDuration(),
		ExpectTimeout:   c.ExpectTimeoutDuration(),
		KeepRuns:        c.Storage.Badger.KeepRuns,
		Browser:         browserOptions(c),
		Masker:          a.masker,
	}, runner.ChromeSessions, c, writer, store, a.logger)

	return r, closeStore, nil
}

func browserOptions(c *common.Config) browser.Options {
	o := browser.DefaultOptions()
	o.Headless = c.Browser.Headless
	o.NoSandbox = c.Browser.NoSandbox
	o.ExecPath = c.Browser.ExecPath
	o.Proxy = c.Browser.Proxy
	o.UserAgent = c.Browser.UserAgent
	o.WindowWidth = c.Browser.WindowWidth
	o.WindowHeight = c.Browser.WindowHeight
	o.ActionTimeout = c.Browser.ActionTimeoutDuration()
	o.NavTimeout = c.Browser.NavTimeoutDuration()
	o.RecordFPS = c.Browser.RecordFPS
	o.RecordMaxFrames = c.Browser.RecordMaxFrames
	o.Debug = c.Browser.Debug
	return o
}

func printOutcomes(cmd *cobra.Command, summary *runner.Summary) {
	out := cmd.OutOrStdout()
	for _, o := range summary.Outcomes {
		status := o.Status()
		note := ""
		if o.Flaky() {
			note = " (flaky)"
		}
		label := fmt.Sprintf("%-8s", status)
		if style, ok := statusStyles[status]; ok {
			label = style.Render(label)
		}
		fmt.Fprintf(out, "%s %s  [%d attempt(s)]%s\n", label, o.Definition.Name, len(o.Attempts), note)
		if status != models.RunPassed && len(o.Attempts) > 0 {
			fmt.Fprintf(out, "         %s\n", o.Attempts[len(o.Attempts)-1].Error)
		}
	}
	if summary.SummaryPath != "" {
		fmt.Fprintf(out, "\nReport: %s\n", summary.SummaryPath)
	}
}

func failedCount(summary *runner.Summary) int {
	n := 0
	for _, o := range summary.Outcomes {
		if o.Status() != models.RunPassed {
			n++
		}
	}
	return n
}
