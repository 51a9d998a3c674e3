package steps

import (
	"context"

	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// Step is an open or finished node of the reporter's tree.
type Step struct {
	reporter *Reporter
	parent   *Step
	rec      *models.StepRecord
}

// Run opens a child step of s.
func (s *Step) Run(ctx context.Context, name string, fn func(ctx context.Context, s *Step) error) error {
	return s.reporter.Run(ctx, s, name, fn)
}

// Reporter returns the reporter that owns the step.
func (s *Step) Reporter() *Reporter { return s.reporter }

// Parent returns the enclosing step, or nil for a top-level step.
func (s *Step) Parent() *Step { return s.parent }

// Depth is 0 for a top-level step.
func (s *Step) Depth() int {
	d := 0
	for p := s.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Name returns the recorded step name.
func (s *Step) Name() string { return s.rec.Name }

// Status returns the current status of the step.
func (s *Step) Status() models.StepStatus {
	s.reporter.mu.Lock()
	defer s.reporter.mu.Unlock()
	return s.rec.Status
}

// Attach adds an artifact reference to the step.
func (s *Step) Attach(a models.Attachment) {
	s.reporter.mu.Lock()
	s.rec.Attachments = append(s.rec.Attachments, a)
	s.reporter.mu.Unlock()
}

// Record returns the step's record. It must not be modified by the caller.
func (s *Step) Record() *models.StepRecord { return s.rec }

// HasFailedChild reports whether a direct or indirect child of s failed.
// Failure artifacts are captured once, at the deepest failing step.
func (s *Step) HasFailedChild() bool {
	s.reporter.mu.Lock()
	defer s.reporter.mu.Unlock()
	failed := false
	for _, c := range s.rec.Children {
		c.Walk(func(_ int, rec *models.StepRecord) {
			if rec.Status == models.StepFailed {
				failed = true
			}
		})
	}
	return failed
}
