// Package scenario composes page-object actions into named, fail-fast
// sequences of steps.
package scenario

import (
	"context"

	"github.com/ternarybob/turngreen-e2e/internal/models"
	"github.com/ternarybob/turngreen-e2e/internal/steps"
)

// Step is one named action or assertion of a scenario.
type Step struct {
	Name string
	Run  func(ctx context.Context, s *steps.Step) error
}

// Scenario is a fixed linear sequence of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Execute runs the steps in order under a top-level step named after the
// scenario. The first failing step ends the scenario; later steps are never
// started and nothing is rolled back.
func (sc *Scenario) Execute(ctx context.Context, r *steps.Reporter) (*models.StepRecord, error) {
	var root *models.StepRecord
	err := r.Run(ctx, nil, sc.Name, func(ctx context.Context, s *steps.Step) error {
		root = s.Record()
		for _, st := range sc.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.Run(ctx, st.Name, st.Run); err != nil {
				return err
			}
		}
		return nil
	})
	return root, err
}
