package browser

import (
	"sync"
	"time"
)

// netTracker counts in-flight requests for the networkidle load state.
type netTracker struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	last     time.Time
}

func newNetTracker() *netTracker {
	return &netTracker{inflight: make(map[string]struct{}), last: time.Now()}
}

func (n *netTracker) started(id string) {
	n.mu.Lock()
	n.inflight[id] = struct{}{}
	n.last = time.Now()
	n.mu.Unlock()
}

func (n *netTracker) finished(id string) {
	n.mu.Lock()
	if _, ok := n.inflight[id]; ok {
		delete(n.inflight, id)
		n.last = time.Now()
	}
	n.mu.Unlock()
}

// idleFor reports whether no request has been in flight for at least d.
func (n *netTracker) idleFor(d time.Duration, now time.Time) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.inflight) == 0 && now.Sub(n.last) >= d
}
