// ABOUTME: Key input to cue jump translation
// ABOUTME: Filters modifiers and editable contexts, debounces repeats, resolves via the key map
package dispatch

import (
	"sync"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/cue"
)

// DefaultDebounce is the per-key repeat suppression window in seconds.
const DefaultDebounce = 0.150

// KeyEvent is one physical key input. At is master-clock seconds;
// tests feed synthetic events with hand-picked timestamps.
type KeyEvent struct {
	Key       string
	Ctrl      bool
	Alt       bool
	Meta      bool
	FromInput bool // event targeted an editable/text-input context
	At        float64
}

// Resolver maps a key to a cue point. *cue.Registry satisfies this.
type Resolver interface {
	Resolve(key string) (cue.CuePoint, bool)
}

// Dispatcher translates key events into jump calls. It owns no
// playback state; it only filters, debounces, and resolves.
type Dispatcher struct {
	mu       sync.Mutex
	resolver Resolver
	jump     func(position float64)
	debounce float64
	lastSeen map[string]float64
	attached bool
}

// NewDispatcher creates a dispatcher routing matched keys to jump.
// A zero debounce selects DefaultDebounce.
func NewDispatcher(resolver Resolver, debounce float64, jump func(position float64)) *Dispatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Dispatcher{
		resolver: resolver,
		jump:     jump,
		debounce: debounce,
		lastSeen: make(map[string]float64),
	}
}

// Attach starts accepting events.
func (d *Dispatcher) Attach() {
	d.mu.Lock()
	d.attached = true
	d.mu.Unlock()
}

// Detach stops accepting events and forgets debounce state.
func (d *Dispatcher) Detach() {
	d.mu.Lock()
	d.attached = false
	d.lastSeen = make(map[string]float64)
	d.mu.Unlock()
}

// Dispatch handles one key event. Returns true when a jump was
// invoked. Events carrying modifiers, events from editable contexts,
// repeats inside the debounce window, and unbound keys are ignored.
func (d *Dispatcher) Dispatch(ev KeyEvent) bool {
	d.mu.Lock()
	if !d.attached {
		d.mu.Unlock()
		return false
	}
	if ev.Ctrl || ev.Alt || ev.Meta || ev.FromInput {
		d.mu.Unlock()
		return false
	}
	if last, seen := d.lastSeen[ev.Key]; seen && ev.At-last < d.debounce {
		d.mu.Unlock()
		return false
	}
	d.lastSeen[ev.Key] = ev.At

	c, ok := d.resolver.Resolve(ev.Key)
	jump := d.jump
	d.mu.Unlock()

	if !ok {
		return false
	}
	jump(c.Position)
	return true
}
