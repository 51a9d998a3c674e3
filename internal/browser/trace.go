package browser

import (
	"encoding/json"
	"sync"
	"time"
)

// TraceEvent is one entry of a session trace.
type TraceEvent struct {
	Time   time.Time `json:"time"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
}

type tracer struct {
	mu     sync.Mutex
	redact func(string) string
	active bool
	events []TraceEvent
	now    func() time.Time
}

func newTracer(redact func(string) string) *tracer {
	return &tracer{redact: redact, now: time.Now}
}

func (t *tracer) start() {
	t.mu.Lock()
	t.active = true
	t.events = nil
	t.mu.Unlock()
}

func (t *tracer) add(kind, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.events = append(t.events, TraceEvent{Time: t.now(), Kind: kind, Detail: t.redact(detail)})
}

// stop ends the trace and returns the timeline as JSON. It returns nil when
// no trace was started.
func (t *tracer) stop() ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return nil, nil
	}
	t.active = false
	events := t.events
	t.events = nil
	if events == nil {
		events = []TraceEvent{}
	}
	return json.MarshalIndent(events, "", "  ")
}

// StartTrace begins recording actions, navigations, console and network events.
func (s *Session) StartTrace() {
	s.trace.start()
	s.logger.Debug().Msg("Trace started")
}

// StopTrace returns the recorded timeline as JSON.
func (s *Session) StopTrace() ([]byte, error) {
	return s.trace.stop()
}
