// ABOUTME: Follower surface contract and a local clock-driven surface
// ABOUTME: Any playback surface exposing position read, position assign, and play/pause
package follower

import (
	"sync"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/clock"
)

// Surface is the three-operation contract the sync core depends on:
// a readable current position, an assignable position, and play/pause
// control. Everything else about the surface is opaque.
type Surface interface {
	Position() float64
	SetPosition(pos float64) error
	Play() error
	Pause() error
}

// Local is an in-process Surface that advances its own position from
// a clock while playing. Used for standalone operation and as a stand-in
// when no remote surface is attached.
type Local struct {
	mu       sync.Mutex
	clk      clock.Clock
	duration float64
	base     float64 // position at last play/seek
	since    float64 // clock reading at last play/seek
	playing  bool
	rate     float64 // playback rate relative to the clock
}

// NewLocal creates a paused local surface at position 0. A rate below
// or above 1.0 makes the surface drift against the master clock,
// which is how tests and demos exercise the correction loop.
func NewLocal(clk clock.Clock, duration, rate float64) *Local {
	if rate <= 0 {
		rate = 1.0
	}
	return &Local{clk: clk, duration: duration, rate: rate}
}

// Position returns the current surface position.
func (l *Local) Position() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.positionLocked()
}

func (l *Local) positionLocked() float64 {
	pos := l.base
	if l.playing {
		pos += (l.clk.Now() - l.since) * l.rate
	}
	if pos > l.duration {
		pos = l.duration
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// SetPosition assigns the surface position.
func (l *Local) SetPosition(pos float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > l.duration {
		pos = l.duration
	}
	l.base = pos
	l.since = l.clk.Now()
	return nil
}

// Play starts advancing the position.
func (l *Local) Play() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.playing {
		return nil
	}
	l.base = l.positionLocked()
	l.since = l.clk.Now()
	l.playing = true
	return nil
}

// Pause freezes the position.
func (l *Local) Pause() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.playing {
		return nil
	}
	l.base = l.positionLocked()
	l.playing = false
	return nil
}
