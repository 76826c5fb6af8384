// ABOUTME: Playback state machine driving the drift/correction loop
// ABOUTME: Owns sessions, sequences jumps, and schedules the fast and watchdog ticks
package playback

import (
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/clock"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/follower"
	syncctl "github.com/pmoneynz/YouTube-cue-point-editor/internal/sync"
)

const (
	// DefaultTickInterval is the fast drift-sampling period.
	DefaultTickInterval = 50 * time.Millisecond

	// DefaultWatchdogInterval is the slow safety-net period.
	DefaultWatchdogInterval = 2 * time.Second
)

// AudioEngine is the master audio contract: start playing the decoded
// buffer at an offset and report the master-clock value at which
// playback actually began. That value becomes the session origin.
type AudioEngine interface {
	PlayAt(offset float64) (origin float64, err error)
	Stop()
}

// Config holds engine construction parameters. Clock, Scheduler and
// Duration are required; Follower and Audio may be attached later.
type Config struct {
	Clock            clock.Clock
	Scheduler        Scheduler
	Duration         float64
	Follower         follower.Surface
	Audio            AudioEngine
	Threshold        float64 // 0 selects syncctl.DefaultThreshold
	Throttle         float64 // 0 selects syncctl.DefaultThrottle
	TickInterval     time.Duration
	WatchdogInterval time.Duration

	// OnStateChange fires after every state transition.
	OnStateChange func(Status)
}

// Status is a read-only view of the state machine.
type Status struct {
	Playing  bool
	Session  *Session
	Position float64
	Duration float64
	Sync     syncctl.Stats
}

// Engine is the playback state machine. Two states: Idle (not
// playing) and Playing. All mutations happen under one lock; ticks
// arriving from the scheduler re-check their generation so a
// cancelled loop can never act on the session that superseded it.
type Engine struct {
	mu       sync.Mutex
	cfg      Config
	clk      clock.Clock
	sched    Scheduler
	fol      follower.Surface
	audio    AudioEngine
	duration float64

	monitor   *syncctl.Monitor
	corrector *syncctl.Corrector

	session *Session
	playing bool

	gen       int // bumped on every tick teardown
	tickH     Handle
	watchdogH Handle
}

// NewEngine creates an idle engine.
func NewEngine(cfg Config) *Engine {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.WatchdogInterval <= 0 {
		cfg.WatchdogInterval = DefaultWatchdogInterval
	}
	return &Engine{
		cfg:       cfg,
		clk:       cfg.Clock,
		sched:     cfg.Scheduler,
		fol:       cfg.Follower,
		audio:     cfg.Audio,
		duration:  cfg.Duration,
		monitor:   syncctl.NewMonitor(cfg.Threshold),
		corrector: syncctl.NewCorrector(cfg.Threshold, cfg.Throttle, cfg.Duration),
	}
}

// AttachFollower connects a surface. If the engine is already playing
// the control loop starts with the next transition; a detached
// follower keeps the monitor dormant rather than erroring.
func (e *Engine) AttachFollower(s follower.Surface) {
	e.mu.Lock()
	e.fol = s
	startLoop := e.playing && e.tickH == nil && s != nil
	if startLoop {
		e.startTicksLocked()
	}
	e.mu.Unlock()
}

// SetDuration updates the media duration bound.
func (e *Engine) SetDuration(d float64) {
	e.mu.Lock()
	e.duration = d
	e.corrector.SetDuration(d)
	e.mu.Unlock()
}

// Play transitions Idle -> Playing. The session anchors the follower's
// current position to the master clock; when a master audio engine is
// attached, the origin is the clock value at which audio actually
// started. Statistics reset because a new sync run begins.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.playing {
		e.mu.Unlock()
		return
	}

	offset := 0.0
	if e.session != nil {
		// Resting offset left behind by a jump while idle
		offset = e.session.Offset
	}
	if e.fol != nil {
		offset = e.fol.Position()
	}

	origin := e.clk.Now()
	if e.audio != nil {
		actual, err := e.audio.PlayAt(offset)
		if err != nil {
			log.Printf("Master audio start failed, using clock origin: %v", err)
		} else {
			origin = actual
		}
	}

	e.session = newSession(origin, offset)
	e.playing = true
	e.monitor.Reset()
	e.corrector.Reset()

	if e.fol != nil {
		if err := e.fol.Play(); err != nil {
			log.Printf("Follower play failed: %v", err)
		}
		e.startTicksLocked()
	}
	e.mu.Unlock()
	e.notify()
}

// Pause transitions Playing -> Idle. Both ticks are cancelled, not
// merely flagged, and the generation bump renders any in-flight tick
// inert. The session is discarded wholesale.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.playing {
		e.mu.Unlock()
		return
	}

	e.stopTicksLocked()
	if e.audio != nil {
		e.audio.Stop()
	}
	if e.fol != nil {
		if err := e.fol.Pause(); err != nil {
			log.Printf("Follower pause failed: %v", err)
		}
	}
	e.session = nil
	e.playing = false
	e.mu.Unlock()
	e.notify()
}

// Toggle flips between Play and Pause.
func (e *Engine) Toggle() {
	e.mu.Lock()
	playing := e.playing
	e.mu.Unlock()
	if playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// Jump seeks to target from either state. The existing session is
// superseded first so a stale source-ended callback can never stop
// the new one, then a forced correction resolves the follower
// immediately instead of waiting out the throttle. Playing stays
// Playing; Idle stays Idle with target as the resting position.
func (e *Engine) Jump(target float64) {
	e.mu.Lock()

	if target < 0 {
		target = 0
	}
	if target > e.duration {
		target = e.duration
	}

	origin := e.clk.Now()
	if e.playing && e.audio != nil {
		actual, err := e.audio.PlayAt(target)
		if err != nil {
			log.Printf("Master audio jump failed, using clock origin: %v", err)
		} else {
			origin = actual
		}
	}

	// Supersession: the new session gets a fresh identity before any
	// callback from the old source can observe it.
	e.session = newSession(origin, target)

	if e.fol != nil {
		now := e.clk.Now()
		expected := clock.ExpectedPosition(e.session.Origin, e.session.Offset, now)
		e.corrector.Correct(expected, e.fol.Position(), now, true, e.assignLocked)
	}
	e.mu.Unlock()
	e.notify()
}

// SourceEnded handles an end-of-stream callback from a master source.
// Callbacks carry the session identity they were armed for; anything
// but the live session is ignored.
func (e *Engine) SourceEnded(id uuid.UUID) {
	e.mu.Lock()
	stale := e.session == nil || e.session.ID != id
	e.mu.Unlock()
	if stale {
		return
	}
	e.Pause()
}

// SessionID returns the live session identity, or uuid.Nil when idle
// with no resting session.
func (e *Engine) SessionID() uuid.UUID {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return uuid.Nil
	}
	return e.session.ID
}

// Status snapshots the state machine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	pos := 0.0
	switch {
	case e.playing && e.session != nil:
		pos = clock.ExpectedPosition(e.session.Origin, e.session.Offset, e.clk.Now())
		if pos > e.duration {
			pos = e.duration
		}
	case e.session != nil:
		pos = e.session.Offset
	case e.fol != nil:
		pos = e.fol.Position()
	}

	stats := e.monitor.Snapshot()
	stats.Corrections = e.corrector.Corrections()
	if at, ok := e.corrector.LastCorrectedAt(); ok {
		stats.LastCorrectedAt = at
	}

	var sess *Session
	if e.session != nil {
		s := *e.session
		sess = &s
	}
	return Status{
		Playing:  e.playing,
		Session:  sess,
		Position: pos,
		Duration: e.duration,
		Sync:     stats,
	}
}

// startTicksLocked arms the fast tick and the watchdog together.
func (e *Engine) startTicksLocked() {
	gen := e.gen
	e.tickH = e.sched.Schedule(e.cfg.TickInterval, func() { e.tick(gen) })
	e.watchdogH = e.sched.Schedule(e.cfg.WatchdogInterval, func() { e.watchdog(gen) })
}

// stopTicksLocked cancels both timers and invalidates their
// generation so a tick already in flight does nothing.
func (e *Engine) stopTicksLocked() {
	e.gen++
	if e.tickH != nil {
		e.tickH.Cancel()
		e.tickH = nil
	}
	if e.watchdogH != nil {
		e.watchdogH.Cancel()
		e.watchdogH = nil
	}
}

// tick is the fast loop: sample drift, correct when warranted,
// reschedule while still the live generation.
func (e *Engine) tick(gen int) {
	e.mu.Lock()
	if gen != e.gen || !e.playing || e.session == nil || e.fol == nil {
		e.mu.Unlock()
		return
	}

	now := e.clk.Now()
	expected := clock.ExpectedPosition(e.session.Origin, e.session.Offset, now)
	actual := e.fol.Position()
	e.monitor.Record(actual - expected)
	e.corrector.Correct(expected, actual, now, false, e.assignLocked)

	e.tickH = e.sched.Schedule(e.cfg.TickInterval, func() { e.tick(gen) })
	e.mu.Unlock()
}

// watchdog is the slow safety net: an independent re-check at twice
// the threshold in case the fast loop stalls.
func (e *Engine) watchdog(gen int) {
	e.mu.Lock()
	if gen != e.gen || !e.playing || e.session == nil || e.fol == nil {
		e.mu.Unlock()
		return
	}

	now := e.clk.Now()
	expected := clock.ExpectedPosition(e.session.Origin, e.session.Offset, now)
	actual := e.fol.Position()
	if math.Abs(actual-expected) > syncctl.WatchdogMultiplier*e.monitor.Threshold() {
		log.Printf("Watchdog drift %.3fs at %.3fs", actual-expected, now)
		e.corrector.Correct(expected, actual, now, false, e.assignLocked)
	}

	e.watchdogH = e.sched.Schedule(e.cfg.WatchdogInterval, func() { e.watchdog(gen) })
	e.mu.Unlock()
}

// assignLocked seeks the follower, clamping and retrying once when
// the surface rejects the position. Never fatal; a second rejection
// just skips this correction.
func (e *Engine) assignLocked(target float64) error {
	err := e.fol.SetPosition(target)
	if err == nil {
		return nil
	}

	clamped := target
	if clamped < 0 {
		clamped = 0
	}
	if clamped > e.duration {
		clamped = e.duration
	}
	log.Printf("Follower rejected seek to %.3fs (%v), retrying at %.3fs", target, err, clamped)
	return e.fol.SetPosition(clamped)
}

// Close tears the engine down, cancelling all timers.
func (e *Engine) Close() {
	e.mu.Lock()
	e.stopTicksLocked()
	e.session = nil
	e.playing = false
	e.mu.Unlock()
}

func (e *Engine) notify() {
	if e.cfg.OnStateChange != nil {
		e.cfg.OnStateChange(e.Status())
	}
}
