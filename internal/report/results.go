package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ternarybob/turngreen-e2e/internal/models"
)

// LoadResults reads every result file in dir, oldest first.
func LoadResults(dir string) ([]Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+resultSuffix))
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		var r Result
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Start < results[j].Start })
	return results, nil
}

// Duration returns the wall time of the result.
func (r Result) Duration() time.Duration {
	if r.Stop < r.Start {
		return 0
	}
	return time.Duration(r.Stop-r.Start) * time.Millisecond
}

// Parameter returns the value of a named parameter, or "".
func (r Result) Parameter(name string) string {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// FailurePath returns the chain of steps down to the deepest failed one.
func (r Result) FailurePath() []ResultStep {
	var path []ResultStep
	steps := r.Steps
	for {
		next := -1
		for i, s := range steps {
			if s.Status == string(models.StepFailed) {
				next = i
				break
			}
		}
		if next < 0 {
			return path
		}
		path = append(path, steps[next])
		steps = steps[next].Steps
	}
}

// Summary counts results per status.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Broken  int
	Skipped int
}

// Summarize counts results per status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case string(models.RunPassed):
			s.Passed++
		case string(models.RunFailed):
			s.Failed++
		case string(models.RunBroken):
			s.Broken++
		case string(models.RunSkipped):
			s.Skipped++
		}
	}
	return s
}
