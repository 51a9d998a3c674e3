package models

import "time"

// StepStatus is the lifecycle state of a step record.
// A record starts pending and moves to exactly one terminal status.
type StepStatus string

const (
	StepPending StepStatus = "pending"
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
)

// IsTerminal reports whether the status can no longer change.
func (s StepStatus) IsTerminal() bool {
	return s == StepPassed || s == StepFailed
}

// Attachment references an artifact captured while a step was open.
// Source is relative to the results directory of the run.
type Attachment struct {
	Name   string `json:"name"`
	Type   string `json:"type"` // MIME type, e.g. "image/png"
	Source string `json:"source"`
}

// StepRecord is one node of the report tree.
//
// The tree is append-only while a scenario runs and read-only afterwards
// (report rendering, run history). Records never carry the values typed into
// masked fields: only the human description given by the caller.
type StepRecord struct {
	Name        string        `json:"name"`
	Status      StepStatus    `json:"status"`
	Error       string        `json:"error,omitempty"` // Failure cause, set only when Status is failed
	Start       time.Time     `json:"start"`
	Stop        time.Time     `json:"stop,omitempty"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	Children    []*StepRecord `json:"children,omitempty"`
}

// Duration returns how long the step ran, or zero while it is still pending.
func (r *StepRecord) Duration() time.Duration {
	if r.Stop.IsZero() {
		return 0
	}
	return r.Stop.Sub(r.Start)
}

// Walk visits the record and its descendants depth-first, parents before children.
func (r *StepRecord) Walk(fn func(depth int, rec *StepRecord)) {
	r.walk(0, fn)
}

func (r *StepRecord) walk(depth int, fn func(int, *StepRecord)) {
	fn(depth, r)
	for _, c := range r.Children {
		c.walk(depth+1, fn)
	}
}

// Leaves returns the records without children, in execution order.
func (r *StepRecord) Leaves() []*StepRecord {
	var leaves []*StepRecord
	r.Walk(func(_ int, rec *StepRecord) {
		if len(rec.Children) == 0 {
			leaves = append(leaves, rec)
		}
	})
	return leaves
}

// Find returns the first record (depth-first) with the given name.
func (r *StepRecord) Find(name string) *StepRecord {
	var found *StepRecord
	r.Walk(func(_ int, rec *StepRecord) {
		if found == nil && rec.Name == name {
			found = rec
		}
	})
	return found
}

// FailurePath returns the chain from this record down to the deepest failed
// descendant. It is empty when nothing in the tree failed.
func (r *StepRecord) FailurePath() []*StepRecord {
	if r.Status != StepFailed {
		return nil
	}
	path := []*StepRecord{r}
	for _, c := range r.Children {
		if sub := c.FailurePath(); len(sub) > 0 {
			return append(path, sub...)
		}
	}
	return path
}
