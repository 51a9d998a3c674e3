// Package runner executes catalog scenarios against fresh browser sessions,
// retrying failed attempts and writing every attempt to the results
// directory and the run history.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/browser"
	"github.com/ternarybob/turngreen-e2e/internal/common"
	"github.com/ternarybob/turngreen-e2e/internal/interfaces"
	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/report"
	"github.com/ternarybob/turngreen-e2e/internal/scenario"
	"github.com/ternarybob/turngreen-e2e/internal/secure"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
	"golang.org/x/sync/errgroup"
)

// SessionFactory opens one browser session. Every attempt gets its own.
type SessionFactory func(ctx context.Context, opts browser.Options, logger arbor.ILogger) (interfaces.Session, error)

// ChromeSessions opens real Chrome sessions.
func ChromeSessions(ctx context.Context, opts browser.Options, logger arbor.ILogger) (interfaces.Session, error) {
	s, err := browser.OpenSession(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Options configures a Runner.
type Options struct {
	Environment     string
	BaseURL         string
	ServicePath     string
	Workers         int
	Retries         int // extra attempts after a failed one
	ScenarioTimeout time.Duration
	ExpectTimeout   time.Duration
	KeepRuns        int // history kept per scenario, 0 keeps all
	Browser         browser.Options

	// Masker receives the credentials before the first session opens. Share
	// it with the report writer's redactor. Nil creates a private one.
	Masker *secure.Masker
}

// Runner runs scenarios. Store may be nil to skip run history.
type Runner struct {
	opts    Options
	masker  *secure.Masker
	factory SessionFactory
	values  scenario.ValueSource
	writer  *report.Writer
	store   interfaces.RunStorage
	logger  arbor.ILogger
	now     func() time.Time
}

// New creates a runner. values resolves the login credentials.
func New(opts Options, factory SessionFactory, values scenario.ValueSource, writer *report.Writer, store interfaces.RunStorage, logger arbor.ILogger) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.ScenarioTimeout <= 0 {
		opts.ScenarioTimeout = 90 * time.Second
	}
	masker := opts.Masker
	if masker == nil {
		masker = secure.NewMasker()
	}
	return &Runner{
		opts:    opts,
		masker:  masker,
		factory: factory,
		values:  values,
		writer:  writer,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Outcome holds every attempt of one scenario, in order.
type Outcome struct {
	Definition scenario.Definition
	Attempts   []*models.RunRecord
}

// Status is the status of the last attempt.
func (o Outcome) Status() models.RunStatus {
	if len(o.Attempts) == 0 {
		return models.RunSkipped
	}
	return o.Attempts[len(o.Attempts)-1].Status
}

// Flaky reports whether the scenario passed only after a retry.
func (o Outcome) Flaky() bool {
	return o.Status() == models.RunPassed && len(o.Attempts) > 1
}

// Summary is the result of one Run call.
type Summary struct {
	Outcomes    []Outcome
	ResultsDir  string
	SummaryPath string
}

// Passed reports whether every scenario ended passed.
func (s *Summary) Passed() bool {
	for _, o := range s.Outcomes {
		if o.Status() != models.RunPassed {
			return false
		}
	}
	return true
}

// Run executes defs with the configured worker limit. Configuration errors
// (missing base URL or credentials) are returned before any session opens.
// Scenario failures are not errors: they are reported in the Summary.
func (r *Runner) Run(ctx context.Context, defs []scenario.Definition) (*Summary, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("no scenarios selected")
	}
	if r.opts.BaseURL == "" {
		return nil, &models.ConfigurationError{Name: "BASE_URL", Reason: "not defined in .env or the environment"}
	}
	creds, err := scenario.LoadCredentials(r.values)
	if err != nil {
		return nil, err
	}
	r.masker.Register(creds.Values()...)
	masker := r.masker

	r.logger.Info().
		Int("scenarios", len(defs)).
		Int("workers", r.opts.Workers).
		Int("retries", r.opts.Retries).
		Str("environment", r.opts.Environment).
		Bool("headless", r.opts.Browser.Headless).
		Msg("Starting run")

	outcomes := make([]Outcome, len(defs))
	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, def := range defs {
		g.Go(func() error {
			outcomes[i] = r.runScenario(ctx, def, creds, masker)
			return nil
		})
	}
	_ = g.Wait()

	summary := &Summary{Outcomes: outcomes, ResultsDir: r.writer.Dir()}
	r.finish(summary)
	return summary, nil
}

func (r *Runner) runScenario(ctx context.Context, def scenario.Definition, creds scenario.Credentials, masker *secure.Masker) Outcome {
	outcome := Outcome{Definition: def}

	if ctx.Err() != nil {
		run := r.skipped(def, "run cancelled before the scenario started")
		outcome.Attempts = append(outcome.Attempts, run)
		return outcome
	}

	for attempt := 1; attempt <= 1+r.opts.Retries; attempt++ {
		run, err := r.runAttempt(ctx, def, attempt, creds, masker)
		outcome.Attempts = append(outcome.Attempts, run)

		if run.Status == models.RunPassed || ctx.Err() != nil || models.IsConfiguration(err) {
			break
		}
		if attempt <= r.opts.Retries {
			r.logger.Warn().
				Str("scenario", def.Name).
				Int("attempt", attempt).
				Str("status", string(run.Status)).
				Msg("Scenario failed, retrying in a fresh session")
		}
	}
	return outcome
}

func (r *Runner) runAttempt(ctx context.Context, def scenario.Definition, attempt int, creds scenario.Credentials, masker *secure.Masker) (*models.RunRecord, error) {
	run := &models.RunRecord{
		ID:          common.NewRunID(),
		Scenario:    def.Name,
		Environment: r.opts.Environment,
		Attempt:     attempt,
		StartedAt:   r.now(),
		ResultsDir:  r.writer.Dir(),
	}
	logger := r.logger.WithCorrelationId(run.ID)
	logger.Info().Str("scenario", def.Name).Int("attempt", attempt).Msg("Scenario started")

	opts := r.opts.Browser
	opts.Redact = masker.Redact

	var err error
	session, openErr := r.factory(ctx, opts, logger)
	if openErr != nil {
		err = fmt.Errorf("open browser session: %w", openErr)
	} else {
		err = r.execute(ctx, session, def, attempt, creds, masker, logger, run)
		if closeErr := session.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("Failed to close browser session")
		}
	}

	run.FinishedAt = r.now()
	run.Status = models.ClassifyError(err)
	if err != nil {
		run.Error = masker.Redact(err.Error())
	}
	r.persist(ctx, def, run, logger)

	event := logger.Info()
	if run.Status != models.RunPassed {
		event = logger.Warn().Str("error", run.Error)
	}
	event.Str("scenario", def.Name).
		Int("attempt", attempt).
		Str("status", string(run.Status)).
		Dur("duration", run.Duration()).
		Msg("Scenario finished")

	return run, err
}

func (r *Runner) execute(ctx context.Context, session interfaces.Session, def scenario.Definition, attempt int, creds scenario.Credentials, masker *secure.Masker, logger arbor.ILogger, run *models.RunRecord) error {
	// First retry runs with a trace.
	if attempt == 2 {
		session.StartTrace()
	}

	collector := newArtifacts(session, r.writer, masker, logger)
	reporter := steps.NewReporter(logger,
		steps.WithRedactor(masker.Redact),
		steps.WithStepEndHook(collector.onStepEnd),
	)

	sc := def.Build(scenario.Deps{
		Page:          session,
		Actions:       secure.NewActions(reporter, masker),
		Logger:        logger,
		BaseURL:       r.opts.BaseURL,
		ServicePath:   r.opts.ServicePath,
		Credentials:   creds,
		ExpectTimeout: r.opts.ExpectTimeout,
	})

	sctx, cancel := context.WithTimeout(ctx, r.opts.ScenarioTimeout)
	defer cancel()

	root, err := sc.Execute(sctx, reporter)
	run.Root = root

	if err != nil && errors.Is(sctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		var te *models.TimeoutError
		if !errors.As(err, &te) {
			err = &models.TimeoutError{Operation: "scenario " + def.Name, Timeout: r.opts.ScenarioTimeout, Err: err}
		}
	}
	return err
}

func (r *Runner) persist(ctx context.Context, def scenario.Definition, run *models.RunRecord, logger arbor.ILogger) {
	ctx = context.WithoutCancel(ctx)

	if _, err := r.writer.WriteResult(run, def.Suite); err != nil {
		logger.Error().Err(err).Msg("Failed to write result")
	}

	if r.store == nil {
		return
	}
	if err := r.store.SaveRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("Failed to save run history")
		return
	}
	if r.opts.KeepRuns > 0 {
		if _, err := r.store.PruneRuns(ctx, run.Scenario, r.opts.KeepRuns); err != nil {
			logger.Warn().Err(err).Msg("Failed to prune run history")
		}
	}
}

func (r *Runner) skipped(def scenario.Definition, reason string) *models.RunRecord {
	now := r.now()
	run := &models.RunRecord{
		ID:          common.NewRunID(),
		Scenario:    def.Name,
		Environment: r.opts.Environment,
		Status:      models.RunSkipped,
		Error:       reason,
		StartedAt:   now,
		FinishedAt:  now,
		ResultsDir:  r.writer.Dir(),
	}
	r.persist(context.Background(), def, run, r.logger)
	return run
}

func (r *Runner) finish(summary *Summary) {
	if err := r.writer.WriteCategories(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to write categories")
	}
	if err := r.writer.WriteEnvironment(map[string]string{
		"environment": r.opts.Environment,
		"base_url":    r.opts.BaseURL,
		"headless":    fmt.Sprint(r.opts.Browser.Headless),
		"workers":     fmt.Sprint(r.opts.Workers),
		"retries":     fmt.Sprint(r.opts.Retries),
		"version":     common.GetVersion(),
	}); err != nil {
		r.logger.Error().Err(err).Msg("Failed to write environment")
	}

	path, err := report.RenderSummary(r.writer.Dir())
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to render summary")
	} else {
		summary.SummaryPath = path
	}

	passed, flaky := 0, 0
	for _, o := range summary.Outcomes {
		if o.Status() == models.RunPassed {
			passed++
		}
		if o.Flaky() {
			flaky++
		}
	}
	r.logger.Info().
		Int("scenarios", len(summary.Outcomes)).
		Int("passed", passed).
		Int("flaky", flaky).
		Str("results", r.writer.Dir()).
		Msg("Run finished")
}
