// Package throttle rate-limits a stream of sends to at most one per interval.
package throttle

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Heartbeat allows the first call, then any call made at least interval after
// the last allowed one. Calls in between are skipped, not deferred.
type Heartbeat struct {
	clock    clockwork.Clock
	interval time.Duration

	mu     sync.Mutex
	last   time.Time
	primed bool
}

func New(clock clockwork.Clock, interval time.Duration) *Heartbeat {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Heartbeat{clock: clock, interval: interval}
}

// Allow reports whether a send may go out now and, if so, records it.
func (h *Heartbeat) Allow() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock.Now()
	if h.primed && now.Sub(h.last) < h.interval {
		return false
	}
	h.last = now
	h.primed = true
	return true
}

// Force records a send that bypassed the limit, e.g. the final position of a
// drag, so the next Allow is measured from it.
func (h *Heartbeat) Force() {
	h.mu.Lock()
	h.last = h.clock.Now()
	h.primed = true
	h.mu.Unlock()
}

// Reset makes the next Allow succeed unconditionally.
func (h *Heartbeat) Reset() {
	h.mu.Lock()
	h.primed = false
	h.mu.Unlock()
}
