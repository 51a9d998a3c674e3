package models

import "time"

// RunStatus is the outcome of one scenario attempt, using the report
// categories: failed is a product defect (an assertion on the application did
// not hold), broken is a test defect (timeouts, missing elements, config).
type RunStatus string

const (
	RunPassed  RunStatus = "passed"
	RunFailed  RunStatus = "failed"
	RunBroken  RunStatus = "broken"
	RunSkipped RunStatus = "skipped"
)

// RunRecord is the persisted result of one scenario attempt.
type RunRecord struct {
	ID          string    `json:"id"`
	Scenario    string    `json:"scenario" badgerhold:"index"`
	Environment string    `json:"environment"`
	Attempt     int       `json:"attempt"` // 1-based; attempts above 1 are retries
	Status      RunStatus `json:"status" badgerhold:"index"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	ResultsDir  string    `json:"results_dir,omitempty"`

	// Root is the scenario's top-level step record.
	Root *StepRecord `json:"root,omitempty"`
}

// Duration returns the wall time of the attempt.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
