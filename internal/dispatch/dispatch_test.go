// ABOUTME: Tests for key dispatch
// ABOUTME: Covers debounce, modifier and input-context filtering, and attach lifetime
package dispatch

import (
	"testing"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/cue"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *[]float64) {
	t.Helper()
	r := cue.NewRegistry(300.0)
	for _, c := range []cue.CuePoint{
		{Label: "intro", Position: 0.0, Key: "1"},
		{Label: "drop", Position: 64.5, Key: "d"},
	} {
		if err := r.Add(c); err != nil {
			t.Fatal(err)
		}
	}

	jumps := &[]float64{}
	d := NewDispatcher(r, DefaultDebounce, func(pos float64) {
		*jumps = append(*jumps, pos)
	})
	d.Attach()
	return d, jumps
}

func TestDispatchResolvesKey(t *testing.T) {
	d, jumps := newTestDispatcher(t)

	if !d.Dispatch(KeyEvent{Key: "d", At: 1.0}) {
		t.Fatal("expected dispatch for bound key")
	}
	if len(*jumps) != 1 || (*jumps)[0] != 64.5 {
		t.Errorf("expected jump to 64.5, got %v", *jumps)
	}
}

func TestDispatchIgnoresUnboundKey(t *testing.T) {
	d, jumps := newTestDispatcher(t)

	if d.Dispatch(KeyEvent{Key: "z", At: 1.0}) {
		t.Error("expected no dispatch for unbound key")
	}
	if len(*jumps) != 0 {
		t.Errorf("unexpected jumps: %v", *jumps)
	}
}

func TestDispatchIgnoresModifiers(t *testing.T) {
	d, jumps := newTestDispatcher(t)

	for _, ev := range []KeyEvent{
		{Key: "d", Ctrl: true, At: 1.0},
		{Key: "d", Alt: true, At: 2.0},
		{Key: "d", Meta: true, At: 3.0},
	} {
		if d.Dispatch(ev) {
			t.Errorf("expected modifier event to be ignored: %+v", ev)
		}
	}
	if len(*jumps) != 0 {
		t.Errorf("unexpected jumps: %v", *jumps)
	}
}

func TestDispatchIgnoresEditableContext(t *testing.T) {
	d, jumps := newTestDispatcher(t)

	if d.Dispatch(KeyEvent{Key: "d", FromInput: true, At: 1.0}) {
		t.Error("expected input-context event to be ignored")
	}
	if len(*jumps) != 0 {
		t.Errorf("unexpected jumps: %v", *jumps)
	}
}

func TestDispatchDebouncesRepeats(t *testing.T) {
	d, jumps := newTestDispatcher(t)

	if !d.Dispatch(KeyEvent{Key: "d", At: 1.000}) {
		t.Fatal("first event should dispatch")
	}
	// 100ms later: inside the 150ms window
	if d.Dispatch(KeyEvent{Key: "d", At: 1.100}) {
		t.Error("repeat inside debounce window should be ignored")
	}
	// A different physical key is not debounced
	if !d.Dispatch(KeyEvent{Key: "1", At: 1.110}) {
		t.Error("different key should dispatch")
	}
	// Past the window the same key fires again
	if !d.Dispatch(KeyEvent{Key: "d", At: 1.200}) {
		t.Error("event after debounce window should dispatch")
	}

	if len(*jumps) != 3 {
		t.Errorf("expected 3 jumps, got %v", *jumps)
	}
}

func TestDetachStopsDispatch(t *testing.T) {
	d, jumps := newTestDispatcher(t)

	d.Detach()
	if d.Dispatch(KeyEvent{Key: "d", At: 1.0}) {
		t.Error("detached dispatcher should ignore events")
	}
	if len(*jumps) != 0 {
		t.Errorf("unexpected jumps: %v", *jumps)
	}

	// Reattach clears debounce history too
	d.Attach()
	if !d.Dispatch(KeyEvent{Key: "d", At: 1.001}) {
		t.Error("reattached dispatcher should dispatch")
	}
}
