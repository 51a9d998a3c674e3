package steps

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// Hook is called after a step reaches its terminal status.
type Hook func(ctx context.Context, s *Step)

// Reporter builds the step tree of one scenario attempt.
//
// A Reporter is not bound to the calling goroutine: the caller passes the
// parent step explicitly on every call, and a nil parent opens a top-level
// step. Records are mutated under the reporter lock so hooks and report
// writers may read the tree while a scenario is still running.
type Reporter struct {
	mu     sync.Mutex
	logger arbor.ILogger
	redact func(string) string
	hooks  []Hook
	now    func() time.Time
	roots  []*models.StepRecord
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithRedactor filters error text before it is stored or logged. Step names
// are fixed descriptions built by the caller and are recorded verbatim.
func WithRedactor(redact func(string) string) Option {
	return func(r *Reporter) {
		if redact != nil {
			r.redact = redact
		}
	}
}

// WithStepEndHook registers a hook run after every step finishes.
func WithStepEndHook(h Hook) Option {
	return func(r *Reporter) {
		r.hooks = append(r.hooks, h)
	}
}

// WithClock replaces time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// NewReporter creates a reporter with an empty step tree.
func NewReporter(logger arbor.ILogger, opts ...Option) *Reporter {
	if logger == nil {
		logger = arbor.NewNoOpLogger()
	}
	r := &Reporter{
		logger: logger,
		redact: func(s string) string { return s },
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Roots returns the top-level records opened so far.
func (r *Reporter) Roots() []*models.StepRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.StepRecord(nil), r.roots...)
}

// Run opens a step named name under parent, runs fn, and closes the step.
//
// Exactly one record is created per call. The record is marked passed when fn
// returns nil, failed otherwise, and the error from fn is returned unchanged.
// A panic in fn marks the record failed before it propagates.
func (r *Reporter) Run(ctx context.Context, parent *Step, name string, fn func(ctx context.Context, s *Step) error) (err error) {
	s := r.open(parent, name)

	completed := false
	defer func() {
		if completed {
			return
		}
		p := recover()
		if p == nil {
			// runtime.Goexit, e.g. t.FailNow inside the action
			r.close(ctx, s, errors.New("step aborted"))
			return
		}
		r.close(ctx, s, fmt.Errorf("panic: %v", p))
		panic(p)
	}()

	err = fn(ctx, s)
	completed = true
	r.close(ctx, s, err)
	return err
}

func (r *Reporter) open(parent *Step, name string) *Step {
	rec := &models.StepRecord{
		Name:   name,
		Status: models.StepPending,
		Start:  r.now(),
	}

	r.mu.Lock()
	if parent == nil {
		r.roots = append(r.roots, rec)
	} else {
		parent.rec.Children = append(parent.rec.Children, rec)
	}
	r.mu.Unlock()

	s := &Step{reporter: r, parent: parent, rec: rec}
	r.logger.Debug().Str("step", rec.Name).Int("depth", s.Depth()).Msg("Step started")
	return s
}

func (r *Reporter) close(ctx context.Context, s *Step, err error) {
	r.mu.Lock()
	rec := s.rec
	rec.Stop = r.now()
	if err != nil {
		rec.Status = models.StepFailed
		rec.Error = r.redact(err.Error())
	} else {
		rec.Status = models.StepPassed
	}
	name, status, msg, elapsed := rec.Name, rec.Status, rec.Error, rec.Duration()
	hooks := append([]Hook(nil), r.hooks...)
	r.mu.Unlock()

	if status == models.StepFailed {
		r.logger.Warn().Str("step", name).Str("error", msg).Dur("duration", elapsed).Msg("Step failed")
	} else {
		r.logger.Info().Str("step", name).Dur("duration", elapsed).Msg("Step passed")
	}

	for _, h := range hooks {
		h(ctx, s)
	}
}

// RunValue is Run for actions that produce a value. On failure the zero
// value of T is returned with the action's error.
func RunValue[T any](ctx context.Context, r *Reporter, parent *Step, name string, fn func(ctx context.Context, s *Step) (T, error)) (T, error) {
	var out T
	err := r.Run(ctx, parent, name, func(ctx context.Context, s *Step) error {
		v, err := fn(ctx, s)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
