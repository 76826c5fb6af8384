// ABOUTME: Monotonic master clock abstraction
// ABOUTME: Provides the expected-follower-position formula all sync logic builds on
package clock

import (
	"sync"
	"time"
)

// Clock is a monotonic time source in seconds. Now must be
// non-decreasing across calls for the lifetime of the instance.
type Clock interface {
	Now() float64
}

// System is a Clock backed by the runtime monotonic clock.
type System struct {
	start time.Time
}

// NewSystem creates a System clock anchored at the current instant.
func NewSystem() *System {
	return &System{start: time.Now()}
}

// Now returns seconds elapsed since the clock was created.
// time.Since uses the monotonic reading, so wall-clock jumps
// (NTP steps, suspend) never move this backwards.
func (s *System) Now() float64 {
	return time.Since(s.start).Seconds()
}

// Manual is a hand-driven Clock for deterministic tests.
type Manual struct {
	mu  sync.Mutex
	now float64
}

// NewManual creates a Manual clock starting at t seconds.
func NewManual(t float64) *Manual {
	return &Manual{now: t}
}

// Now returns the current manual time.
func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d seconds. Negative deltas are
// ignored so the monotonicity contract holds.
func (m *Manual) Advance(d float64) {
	if d < 0 {
		return
	}
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set moves the clock to t seconds if t is not in the past.
func (m *Manual) Set(t float64) {
	m.mu.Lock()
	if t > m.now {
		m.now = t
	}
	m.mu.Unlock()
}

// ExpectedPosition computes where the follower timeline should be at
// master time now, for a session that started at master time origin
// with the follower at offset. The result is clamped at zero and is
// non-decreasing in now for fixed origin/offset.
func ExpectedPosition(origin, offset, now float64) float64 {
	pos := offset + (now - origin)
	if pos < 0 {
		return 0
	}
	return pos
}
