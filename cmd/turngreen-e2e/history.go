package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"github.com/ternarybob/turngreen-e2e/internal/common"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/storage/badger"
)

func (a *app) historyCmd() *cobra.Command {
	var (
		limit int
		name  string
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent scenario attempts, or the step tree of one attempt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && !common.IsRunID(args[0]) {
				return fmt.Errorf("%q is not a run ID (want %s<uuid>)", args[0], common.RunIDPrefix)
			}

			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRun(run))
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), name, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Status", "Attempt", "Duration", "Scenario", "Failing step"},
				historyRows(runs)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of attempts to show")
	cmd.Flags().StringVarP(&name, "scenario", "s", "", "Only show attempts of this scenario")
	return cmd
}

// openHistory opens the run history read-write but never resets it.
func (a *app) openHistory() (interfaces.RunStorage, error) {
	if a.config.Storage.Badger.Path == "" {
		return nil, fmt.Errorf("run history is disabled (storage.badger.path is empty)")
	}
	cfg := a.config.Storage.Badger
	cfg.ResetOnStartup = false
	db, err := badger.NewBadgerDB(a.logger, &cfg)
	if err != nil {
		return nil, err
	}
	return badger.NewRunStorage(db, a.logger), nil
}

func historyRows(runs []*models.RunRecord) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		failing := "-"
		if r.Root != nil {
			if path := r.Root.FailurePath(); len(path) > 0 {
				failing = path[len(path)-1].Name
			}
		}
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			styledStatus(r.Status),
			strconv.Itoa(r.Attempt),
			r.Duration().Round(100 * time.Millisecond).String(),
			r.Scenario,
			failing,
		})
	}
	return rows
}

// renderRun prints one attempt as a header and its step tree.
func renderRun(run *models.RunRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s  attempt %d  %s\n", styledStatus(run.Status), run.Scenario, run.Attempt,
		run.Duration().Round(100*time.Millisecond))
	if run.Error != "" {
		fmt.Fprintf(&sb, "%s\n", run.Error)
	}
	if run.Root != nil {
		sb.WriteString("\n")
		sb.WriteString(stepTree(run.Root).String())
	}
	return sb.String()
}

func stepTree(r *models.StepRecord) *tree.Tree {
	t := tree.Root(stepLabel(r)).Enumerator(tree.RoundedEnumerator)
	for _, c := range r.Children {
		if len(c.Children) == 0 {
			t.Child(stepLabel(c))
			continue
		}
		t.Child(stepTree(c))
	}
	return t
}

func stepLabel(r *models.StepRecord) string {
	mark := map[models.StepStatus]string{
		models.StepPassed:  "✓",
		models.StepFailed:  "✗",
		models.StepPending: "…",
	}[r.Status]
	label := mark + " " + r.Name
	if r.Status == models.StepFailed && r.Error != "" && len(r.Children) == 0 {
		label += ": " + r.Error
	}
	return label
}
