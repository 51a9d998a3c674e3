package browser

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer(t *testing.T) {
	tr := newTracer(func(s string) string { return strings.ReplaceAll(s, "hunter2", "********") })

	tr.add("click", "before start")
	b, err := tr.stop()
	require.NoError(t, err)
	assert.Nil(t, b, "no trace without start")

	tr.start()
	tr.add("navigate", "https://cms.turngreen.pt/qa-service")
	tr.add("request", "POST https://auth/login?password=hunter2")
	b, err = tr.stop()
	require.NoError(t, err)

	var events []TraceEvent
	require.NoError(t, json.Unmarshal(b, &events))
	require.Len(t, events, 2)
	assert.Equal(t, "navigate", events[0].Kind)
	assert.Equal(t, "POST https://auth/login?password=********", events[1].Detail)

	tr.add("click", "after stop")
	b, err = tr.stop()
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestTracer_EmptyTraceIsArray(t *testing.T) {
	tr := newTracer(func(s string) string { return s })
	tr.start()
	b, err := tr.stop()
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(b))
}
