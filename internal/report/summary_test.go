package report

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

func TestRenderSummary(t *testing.T) {
	w := newTestWriter(t)

	passed := failedRun()
	passed.Status = models.RunPassed
	passed.Error = ""
	passed.Attempt = 1
	passed.StartedAt = passed.StartedAt.Add(-time.Hour)
	_, err := w.WriteResult(passed, "Backoffice Opportunities")
	require.NoError(t, err)
	_, err = w.WriteResult(failedRun(), "Backoffice Opportunities")
	require.NoError(t, err)

	results, err := LoadResults(w.Dir())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "passed", results[0].Status, "oldest first")

	path, err := RenderSummary(w.Dir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "2 attempts: 1 passed, 1 failed, 0 broken, 0 skipped")
	assert.Contains(t, page, "Product defects")
	assert.Contains(t, page, `href="shot.png"`)
	assert.Contains(t, page, "Confirmar texto")
}

func TestSummaryMarkdown_Empty(t *testing.T) {
	assert.Contains(t, SummaryMarkdown(nil), "No results found.")
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Result{{Status: "passed"}, {Status: "broken"}, {Status: "broken"}, {Status: "skipped"}})
	assert.Equal(t, Summary{Total: 4, Passed: 1, Broken: 2, Skipped: 1}, s)
}
