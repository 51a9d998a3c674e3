package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/common"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

func failedRun() *models.RunRecord {
	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return &models.RunRecord{
		ID:         common.NewRunID(),
		Scenario:   "journey",
		Attempt:    2,
		Status:     models.RunFailed,
		Error:      "success modal not visible",
		StartedAt:  start,
		FinishedAt: start.Add(42 * time.Second),
		Root: &models.StepRecord{
			Name:   "journey",
			Status: models.StepFailed,
			Children: []*models.StepRecord{
				{Name: "Login", Status: models.StepPassed},
				{
					Name:   "Enviar pedido",
					Status: models.StepFailed,
					Children: []*models.StepRecord{
						{Name: "Validar modal", Status: models.StepFailed, Error: "success modal not visible"},
					},
				},
			},
		},
	}
}

func TestHistoryRows_ShowFailingStep(t *testing.T) {
	run := failedRun()
	rows := historyRows([]*models.RunRecord{run})
	require.Len(t, rows, 1)
	assert.Equal(t, run.ID, rows[0][0])
	assert.Equal(t, "2", rows[0][3])
	assert.Equal(t, "42s", rows[0][4])
	assert.Equal(t, "Validar modal", rows[0][6])
}

func TestRenderRun_StepTree(t *testing.T) {
	out := renderRun(failedRun())
	assert.Contains(t, out, "attempt 2")
	assert.Contains(t, out, "✓ Login")
	assert.Contains(t, out, "✗ Enviar pedido")
	assert.Contains(t, out, "✗ Validar modal: success modal not visible")
}

func TestOpenHistory_Disabled(t *testing.T) {
	c := common.NewDefaultConfig()
	c.Storage.Badger.Path = ""
	a := &app{config: c, logger: arbor.NewNoOpLogger()}
	_, err := a.openHistory()
	assert.ErrorContains(t, err, "disabled")
}

func TestOpenHistory_RoundTrip(t *testing.T) {
	c := common.NewDefaultConfig()
	c.Storage.Badger.Path = filepath.Join(t.TempDir(), "runs")
	a := &app{config: c, logger: arbor.NewNoOpLogger()}

	store, err := a.openHistory()
	require.NoError(t, err)
	defer store.Close()

	run := failedRun()
	require.NoError(t, store.SaveRun(t.Context(), run))
	got, err := store.GetRun(t.Context(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, "journey", got.Scenario)
}
