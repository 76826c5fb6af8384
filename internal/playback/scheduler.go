// ABOUTME: Scheduler abstraction for the sync control loop
// ABOUTME: Real timers in production, a manually stepped implementation for tests
package playback

import (
	"sort"
	"sync"
	"time"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/clock"
)

// Handle cancels one scheduled callback. Cancel after fire is a no-op.
type Handle interface {
	Cancel()
}

// Scheduler runs a callback after a delay. The engine owns no timers
// directly; everything periodic goes through this interface so tests
// can step time deterministically.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
}

// TimerScheduler is the production Scheduler over time.AfterFunc.
type TimerScheduler struct{}

// NewTimerScheduler creates a timer-backed scheduler.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

type timerHandle struct {
	t *time.Timer
}

func (h *timerHandle) Cancel() {
	h.t.Stop()
}

// Schedule runs fn on its own goroutine after delay.
func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) Handle {
	return &timerHandle{t: time.AfterFunc(delay, fn)}
}

// ManualScheduler drives callbacks from a manual clock. Advance steps
// the clock and fires everything that comes due, in due order, on the
// calling goroutine.
type ManualScheduler struct {
	mu    sync.Mutex
	clk   *clock.Manual
	tasks []*manualTask
	seq   int
}

type manualTask struct {
	owner     *ManualScheduler
	due       float64
	seq       int
	fn        func()
	cancelled bool
}

func (t *manualTask) Cancel() {
	t.owner.mu.Lock()
	t.cancelled = true
	t.owner.mu.Unlock()
}

// NewManualScheduler creates a scheduler stepped by clk.
func NewManualScheduler(clk *clock.Manual) *ManualScheduler {
	return &ManualScheduler{clk: clk}
}

// Schedule queues fn for clk.Now()+delay.
func (s *ManualScheduler) Schedule(delay time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	task := &manualTask{
		owner: s,
		due:   s.clk.Now() + delay.Seconds(),
		seq:   s.seq,
		fn:    fn,
	}
	s.tasks = append(s.tasks, task)
	return task
}

// Advance moves the clock forward by d seconds, firing due callbacks
// in order. Callbacks may schedule further tasks; those fire too if
// they fall inside the window.
func (s *ManualScheduler) Advance(d float64) {
	target := s.clk.Now() + d
	for {
		task := s.popNext(target)
		if task == nil {
			break
		}
		s.clk.Set(task.due)
		task.fn()
	}
	s.clk.Set(target)
}

// popNext removes and returns the earliest non-cancelled task due at
// or before limit.
func (s *ManualScheduler) popNext(limit float64) *manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.tasks[:0]
	for _, t := range s.tasks {
		if !t.cancelled {
			live = append(live, t)
		}
	}
	s.tasks = live

	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})

	if len(s.tasks) == 0 || s.tasks[0].due > limit {
		return nil
	}
	task := s.tasks[0]
	s.tasks = s.tasks[1:]
	return task
}

// Pending returns how many live tasks are queued.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
