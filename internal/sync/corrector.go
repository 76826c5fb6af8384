// ABOUTME: Correction controller for follower position drift
// ABOUTME: Applies throttled, clamped, idempotent corrective seeks
package sync

import (
	"log"
	"math"
	"sync"
)

const (
	// DefaultThrottle is the minimum interval between corrections,
	// in seconds.
	DefaultThrottle = 0.100

	// Epsilon is the minimum position delta worth seeking over.
	// Re-applying a correction with the same inputs lands inside this
	// window and becomes a no-op.
	Epsilon = 0.01

	// WatchdogMultiplier widens the drift tolerance for the slow
	// safety-net check.
	WatchdogMultiplier = 2
)

// Corrector decides when a drifting follower gets a corrective seek.
// Corrections are rate-limited to one per throttle interval and the
// target never leaves [0, duration]. A forced pass (cue jump) skips
// both the threshold and the throttle so the jump resolves
// immediately.
type Corrector struct {
	mu        sync.Mutex
	threshold float64
	throttle  float64
	duration  float64

	corrections int
	lastAt      float64
	hasLast     bool
}

// NewCorrector creates a corrector for media of the given duration.
// Zero threshold/throttle select the defaults.
func NewCorrector(threshold, throttle, duration float64) *Corrector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Corrector{
		threshold: threshold,
		throttle:  throttle,
		duration:  duration,
	}
}

// SetDuration updates the clamp bound when the media changes.
func (c *Corrector) SetDuration(d float64) {
	c.mu.Lock()
	c.duration = d
	c.mu.Unlock()
}

// Correct evaluates one drift observation at master time now and, when
// warranted, assigns the follower position through seek. Returns true
// when a seek was issued.
func (c *Corrector) Correct(expected, actual, now float64, force bool, seek func(float64) error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	drift := actual - expected
	if !force && math.Abs(drift) <= c.threshold {
		return false
	}
	if !force && c.hasLast && now-c.lastAt < c.throttle {
		// Rate-limited; steady-state drift waits for the next window.
		return false
	}

	target := clamp(expected, 0, c.duration)
	if math.Abs(target-actual) <= Epsilon {
		return false
	}

	if err := seek(target); err != nil {
		log.Printf("correction seek to %.3fs rejected: %v", target, err)
		return false
	}

	c.corrections++
	c.lastAt = now
	c.hasLast = true
	return true
}

// Corrections returns how many corrective seeks have been applied.
func (c *Corrector) Corrections() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.corrections
}

// LastCorrectedAt returns the master-clock time of the most recent
// correction and whether one has happened.
func (c *Corrector) LastCorrectedAt() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAt, c.hasLast
}

// Reset clears correction statistics for a new sync run.
func (c *Corrector) Reset() {
	c.mu.Lock()
	c.corrections = 0
	c.lastAt = 0
	c.hasLast = false
	c.mu.Unlock()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
