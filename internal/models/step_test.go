package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *StepRecord {
	return &StepRecord{
		Name:   "scenario",
		Status: StepFailed,
		Children: []*StepRecord{
			{Name: "open page", Status: StepPassed},
			{
				Name:   "login",
				Status: StepFailed,
				Children: []*StepRecord{
					{Name: "Fill login email (value masked for security)", Status: StepPassed},
					{Name: "Click submit button", Status: StepFailed, Error: "element not found"},
				},
			},
		},
	}
}

func TestStepRecordLeaves(t *testing.T) {
	var names []string
	for _, leaf := range sampleTree().Leaves() {
		names = append(names, leaf.Name)
	}
	assert.Equal(t, []string{
		"open page",
		"Fill login email (value masked for security)",
		"Click submit button",
	}, names)
}

func TestStepRecordFailurePath(t *testing.T) {
	path := sampleTree().FailurePath()
	require.Len(t, path, 3)
	assert.Equal(t, "scenario", path[0].Name)
	assert.Equal(t, "login", path[1].Name)
	assert.Equal(t, "Click submit button", path[2].Name)

	passed := &StepRecord{Name: "ok", Status: StepPassed}
	assert.Empty(t, passed.FailurePath())
}

func TestStepRecordWalkDepth(t *testing.T) {
	depths := map[string]int{}
	sampleTree().Walk(func(depth int, rec *StepRecord) {
		depths[rec.Name] = depth
	})
	assert.Equal(t, 0, depths["scenario"])
	assert.Equal(t, 1, depths["login"])
	assert.Equal(t, 2, depths["Click submit button"])
}

func TestStepRecordDuration(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	rec := &StepRecord{Start: start}
	assert.Zero(t, rec.Duration())

	rec.Stop = start.Add(1500 * time.Millisecond)
	assert.Equal(t, 1500*time.Millisecond, rec.Duration())
	assert.NotNil(t, sampleTree().Find("login"))
	assert.Nil(t, sampleTree().Find("missing"))
}
