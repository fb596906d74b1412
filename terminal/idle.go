package terminal

import (
	"sync"
	"time"

	"github.com/lixenwraith/rainfield/engine"
)

// IdleTracker measures time since the last viewer input
type IdleTracker struct {
	mu    sync.Mutex
	clock engine.Clock
	last  time.Time
}

// NewIdleTracker starts tracking from the clock's current time
func NewIdleTracker(clock engine.Clock) *IdleTracker {
	if clock == nil {
		clock = engine.NewTimeProvider()
	}
	return &IdleTracker{clock: clock, last: clock.Now()}
}

// Touch records viewer activity
func (t *IdleTracker) Touch() {
	t.mu.Lock()
	t.last = t.clock.Now()
	t.mu.Unlock()
}

// Seconds returns the time since the last Touch
func (t *IdleTracker) Seconds() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return max(0, t.clock.Now().Sub(t.last).Seconds())
}
