package climate

import (
	"sync"
	"time"
)

const MinRefreshInterval = 5 * time.Second

// Throttle admits at most one run at a time and at least min between the
// starts of two admitted runs. The start time is stamped on admission.
type Throttle struct {
	min time.Duration
	now func() time.Time

	mu      sync.Mutex
	running bool
	last    time.Time
}

func NewThrottle(min time.Duration, now func() time.Time) *Throttle {
	if now == nil {
		now = time.Now
	}
	return &Throttle{min: min, now: now}
}

// Begin reports whether a run may start. When it may not, reason is "busy"
// or "throttled". Every admitted run must call End.
func (t *Throttle) Begin() (ok bool, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return false, "busy"
	}
	now := t.now()
	if !t.last.IsZero() && now.Sub(t.last) < t.min {
		return false, "throttled"
	}
	t.running, t.last = true, now
	return true, ""
}

func (t *Throttle) End() {
	t.mu.Lock()
	t.running = false
	t.mu.Unlock()
}
