package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/common"
	"github.com/ternarybob/turngreen-e2e/internal/scenario"
)

// Scheduler reruns a scenario set on a cron schedule for synthetic
// monitoring. A tick that arrives while the previous run is still going is
// skipped.
type Scheduler struct {
	runner *Runner
	defs   []scenario.Definition
	cron   *cron.Cron
	logger arbor.ILogger

	mu      sync.Mutex
	running bool
	lastRun time.Time
	last    *Summary

	// OnRun, when set, is called after every completed scheduled run.
	OnRun func(*Summary, error)
}

// NewScheduler creates a scheduler for defs.
func NewScheduler(r *Runner, defs []scenario.Definition, logger arbor.ILogger) *Scheduler {
	return &Scheduler{
		runner: r,
		defs:   defs,
		cron:   cron.New(),
		logger: logger,
	}
}

// Run registers spec and blocks until ctx is done, then waits for an
// in-flight run to finish.
func (s *Scheduler) Run(ctx context.Context, spec string) error {
	if err := common.ValidateSchedule(spec); err != nil {
		return err
	}

	id, err := s.cron.AddFunc(spec, func() { s.tick(ctx) })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info().
		Str("cron_expr", spec).
		Int("scenarios", len(s.defs)).
		Str("next_run", s.cron.Entry(id).Next.Format(time.RFC3339)).
		Msg("Scheduler started")

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous scheduled run still in progress, skipping")
		return
	}
	s.running = true
	s.lastRun = time.Now()
	s.mu.Unlock()

	summary, err := s.runner.Run(ctx, s.defs)

	s.mu.Lock()
	s.running = false
	s.last = summary
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled run failed")
	} else if !summary.Passed() {
		s.logger.Warn().Str("summary", summary.SummaryPath).Msg("Scheduled run has failing scenarios")
	}

	if s.OnRun != nil {
		s.OnRun(summary, err)
	}
}

// Last returns the most recent completed run and when it started.
func (s *Scheduler) Last() (*Summary, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastRun
}
