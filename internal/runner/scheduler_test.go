package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/turngreen-e2e/internal/browser/fakebrowser"
	"github.com/ternarybob/turngreen-e2e/internal/scenario"
)

func TestScheduler_RejectsTooFrequentSchedule(t *testing.T) {
	r := newTestRunner(t, &sessions{}, credentials(), nil, nil)
	s := NewScheduler(r, []scenario.Definition{opportunity(t)}, arbor.NewNoOpLogger())

	assert.Error(t, s.Run(context.Background(), "* * * * *"))
}

func TestScheduler_TickRunsScenarios(t *testing.T) {
	f := &sessions{pages: []*fakebrowser.Page{happyPage()}}
	r := newTestRunner(t, f, credentials(), nil, nil)
	s := NewScheduler(r, []scenario.Definition{opportunity(t)}, arbor.NewNoOpLogger())

	var got *Summary
	s.OnRun = func(summary *Summary, err error) {
		require.NoError(t, err)
		got = summary
	}
	s.tick(context.Background())

	require.NotNil(t, got)
	assert.True(t, got.Passed())
	last, at := s.Last()
	assert.Same(t, got, last)
	assert.False(t, at.IsZero())
}

func TestScheduler_SkipsOverlappingTick(t *testing.T) {
	f := &sessions{pages: []*fakebrowser.Page{happyPage()}}
	r := newTestRunner(t, f, credentials(), nil, nil)
	s := NewScheduler(r, []scenario.Definition{opportunity(t)}, arbor.NewNoOpLogger())

	s.running = true
	s.tick(context.Background())

	assert.Zero(t, f.count())
	last, _ := s.Last()
	assert.Nil(t, last)
}

func TestScheduler_StopsWithContext(t *testing.T) {
	r := newTestRunner(t, &sessions{}, credentials(), nil, nil)
	s := NewScheduler(r, []scenario.Definition{opportunity(t)}, arbor.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, s.Run(ctx, "*/30 * * * *"))
}
