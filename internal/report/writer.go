// Package report writes scenario results in the Allure results layout and
// renders a static HTML summary from them.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

const (
	categoriesFile  = "categories.json"
	environmentFile = "environment.properties"
	resultSuffix    = "-result.json"

	// MaskedCredentials replaces credential entries in environment.properties.
	MaskedCredentials = "MASKED FOR SECURITY"
)

var extensions = map[string]string{
	"image/png":        "png",
	"image/gif":        "gif",
	"text/html":        "html",
	"text/plain":       "txt",
	"text/markdown":    "md",
	"application/json": "json",
}

// Writer stores results and attachments in one results directory. It is safe
// for concurrent use by runner workers since every file gets a unique name.
type Writer struct {
	dir    string
	redact func(string) string
	logger arbor.ILogger
}

// NewWriter creates dir if needed. redact filters every text artifact and
// result file before it reaches disk; nil writes text unchanged.
func NewWriter(dir string, redact func(string) string, logger arbor.ILogger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	if redact == nil {
		redact = func(s string) string { return s }
	}
	return &Writer{dir: dir, redact: redact, logger: logger}, nil
}

// Dir returns the results directory.
func (w *Writer) Dir() string { return w.dir }

// Attach writes data as <uuid>-attachment.<ext> and returns the reference to
// add to a step record. Text types are redacted first.
func (w *Writer) Attach(name, mimeType string, data []byte) (models.Attachment, error) {
	ext, ok := extensions[mimeType]
	if !ok {
		ext = "bin"
	}
	if isText(mimeType) {
		data = []byte(w.redact(string(data)))
	}

	source := fmt.Sprintf("%s-attachment.%s", uuid.New().String(), ext)
	if err := os.WriteFile(filepath.Join(w.dir, source), data, 0644); err != nil {
		return models.Attachment{}, fmt.Errorf("failed to write attachment %s: %w", name, err)
	}

	w.logger.Debug().Str("name", name).Str("source", source).Int("bytes", len(data)).Msg("Attachment written")
	return models.Attachment{Name: name, Type: mimeType, Source: source}, nil
}

// AttachText is Attach for string content.
func (w *Writer) AttachText(name, mimeType, text string) (models.Attachment, error) {
	return w.Attach(name, mimeType, []byte(text))
}

func isText(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") || mimeType == "application/json"
}

// WriteResult writes one attempt as <uuid>-result.json and returns the path.
func (w *Writer) WriteResult(run *models.RunRecord, suite string) (string, error) {
	result := NewResult(run, suite)
	result.StatusDetails = w.redactDetails(result.StatusDetails)
	w.redactSteps(result.Steps)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	path := filepath.Join(w.dir, result.UUID+resultSuffix)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write result: %w", err)
	}

	w.logger.Debug().
		Str("scenario", run.Scenario).
		Str("status", string(run.Status)).
		Str("path", path).
		Msg("Result written")
	return path, nil
}

// Only failure messages are redacted. Names are fixed descriptions, and
// masking inside them would garble the step tree for short secrets.
func (w *Writer) redactDetails(d *StatusDetails) *StatusDetails {
	if d == nil {
		return nil
	}
	return &StatusDetails{Message: w.redact(d.Message)}
}

func (w *Writer) redactSteps(steps []ResultStep) {
	for i := range steps {
		steps[i].StatusDetails = w.redactDetails(steps[i].StatusDetails)
		w.redactSteps(steps[i].Steps)
	}
}

// Category groups results by status in the report.
type Category struct {
	Name            string   `json:"name"`
	MatchedStatuses []string `json:"matchedStatuses"`
}

// Categories maps assertion failures to product defects and every other
// error to test defects.
var Categories = []Category{
	{Name: "Ignored tests", MatchedStatuses: []string{string(models.RunSkipped)}},
	{Name: "Product defects", MatchedStatuses: []string{string(models.RunFailed)}},
	{Name: "Test defects", MatchedStatuses: []string{string(models.RunBroken)}},
}

// WriteCategories writes categories.json.
func (w *Writer) WriteCategories() error {
	data, err := json.MarshalIndent(Categories, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	if err := os.WriteFile(filepath.Join(w.dir, categoriesFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write categories: %w", err)
	}
	return nil
}

// WriteEnvironment writes environment.properties sorted by key. The
// credentials entry is always present and always masked.
func (w *Writer) WriteEnvironment(props map[string]string) error {
	keys := make([]string, 0, len(props)+1)
	for k := range props {
		if k != "credentials" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, escapeProperty(props[k]))
	}
	fmt.Fprintf(&b, "credentials=%s\n", MaskedCredentials)

	if err := os.WriteFile(filepath.Join(w.dir, environmentFile), []byte(w.redact(b.String())), 0644); err != nil {
		return fmt.Errorf("failed to write environment: %w", err)
	}
	return nil
}

func escapeProperty(v string) string {
	return strings.NewReplacer("\\", "\\\\", "\n", "\\n", "\r", "").Replace(v)
}

// Result is the on-disk form of one scenario attempt.
type Result struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	Name          string              `json:"name"`
	FullName      string              `json:"fullName"`
	Status        string              `json:"status"`
	StatusDetails *StatusDetails      `json:"statusDetails,omitempty"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []Label             `json:"labels,omitempty"`
	Parameters    []Label             `json:"parameters,omitempty"`
	Attachments   []models.Attachment `json:"attachments,omitempty"`
	Steps         []ResultStep        `json:"steps,omitempty"`
}

// ResultStep mirrors a step record.
type ResultStep struct {
	Name          string              `json:"name"`
	Status        string              `json:"status"`
	StatusDetails *StatusDetails      `json:"statusDetails,omitempty"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Attachments   []models.Attachment `json:"attachments,omitempty"`
	Steps         []ResultStep        `json:"steps,omitempty"`
}

type StatusDetails struct {
	Message string `json:"message"`
}

type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewResult converts a run record. The root step's attachments become
// result-level attachments and its children the top-level steps.
func NewResult(run *models.RunRecord, suite string) Result {
	result := Result{
		UUID:      uuid.New().String(),
		HistoryID: uuid.NewSHA1(uuid.NameSpaceURL, []byte(suite+"/"+run.Scenario)).String(),
		Name:      run.Scenario,
		FullName:  suite + " > " + run.Scenario,
		Status:    string(run.Status),
		Stage:     "finished",
		Start:     millis(run.StartedAt),
		Stop:      millis(run.FinishedAt),
		Labels: []Label{
			{Name: "suite", Value: suite},
			{Name: "framework", Value: "turngreen-e2e"},
		},
		Parameters: []Label{
			{Name: "attempt", Value: fmt.Sprint(run.Attempt)},
			{Name: "environment", Value: run.Environment},
		},
	}
	if run.Error != "" {
		result.StatusDetails = &StatusDetails{Message: run.Error}
	}
	if run.Root != nil {
		result.Attachments = run.Root.Attachments
		result.Steps = convertSteps(run.Root.Children)
	}
	return result
}

func convertSteps(records []*models.StepRecord) []ResultStep {
	if len(records) == 0 {
		return nil
	}
	steps := make([]ResultStep, 0, len(records))
	for _, rec := range records {
		step := ResultStep{
			Name:        rec.Name,
			Status:      string(rec.Status),
			Stage:       "finished",
			Start:       millis(rec.Start),
			Stop:        millis(rec.Stop),
			Attachments: rec.Attachments,
			Steps:       convertSteps(rec.Children),
		}
		if rec.Status == models.StepPending {
			step.Stage = "interrupted"
		}
		if rec.Error != "" {
			step.StatusDetails = &StatusDetails{Message: rec.Error}
		}
		steps = append(steps, step)
	}
	return steps
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
