// ABOUTME: Tests for editor orchestration
// ABOUTME: Exercises action handling against an in-memory component stack
package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/clock"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/cue"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/dispatch"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/playback"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/ui"
)

func newTestEditor(t *testing.T) (*Editor, *clock.Manual) {
	t.Helper()

	clk := clock.NewManual(0)
	e := New(Config{
		Duration: 120,
		CuesPath: filepath.Join(t.TempDir(), "cues.json"),
		NoTUI:    true,
	})
	e.clk = clk
	e.registry = cue.NewRegistry(120)
	e.engine = playback.NewEngine(playback.Config{
		Clock:     clk,
		Scheduler: playback.NewManualScheduler(clk),
		Duration:  120,
	})
	e.dispatcher = dispatch.NewDispatcher(e.registry, dispatch.DefaultDebounce, e.engine.Jump)
	e.dispatcher.Attach()
	return e, clk
}

func TestNewDefaultSetName(t *testing.T) {
	e := New(Config{})
	if e.config.SetName != "default" {
		t.Errorf("Expected default set name, got %q", e.config.SetName)
	}
}

func TestToggleAction(t *testing.T) {
	e, _ := newTestEditor(t)

	e.handleAction(ui.Action{Kind: ui.ActionToggle})
	if !e.engine.Status().Playing {
		t.Error("Expected playing after toggle")
	}

	e.handleAction(ui.Action{Kind: ui.ActionToggle})
	if e.engine.Status().Playing {
		t.Error("Expected idle after second toggle")
	}
}

func TestAddAndRemoveCue(t *testing.T) {
	e, _ := newTestEditor(t)

	e.handleAction(ui.Action{Kind: ui.ActionJump, Position: 12.5})
	e.handleAction(ui.Action{Kind: ui.ActionAddCue})

	cues := e.registry.Cues()
	if len(cues) != 1 {
		t.Fatalf("Expected 1 cue, got %d", len(cues))
	}
	if cues[0].Position != 12.5 {
		t.Errorf("Expected cue at 12.5, got %.3f", cues[0].Position)
	}
	if cues[0].Key != "1" {
		t.Errorf("Expected auto key 1, got %q", cues[0].Key)
	}

	e.handleAction(ui.Action{Kind: ui.ActionRemoveCue, Index: 0})
	if e.registry.Len() != 0 {
		t.Errorf("Expected empty registry, got %d cues", e.registry.Len())
	}
}

func TestKeyActionJumpsEngine(t *testing.T) {
	e, clk := newTestEditor(t)

	if err := e.registry.Add(cue.CuePoint{Label: "Drop", Position: 42.0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	clk.Set(1.0)
	e.handleAction(ui.Action{Kind: ui.ActionKey, Key: "1"})

	if pos := e.engine.Status().Position; pos != 42.0 {
		t.Errorf("Expected resting position 42.0, got %.3f", pos)
	}
}

func TestUnboundKeyIgnored(t *testing.T) {
	e, _ := newTestEditor(t)

	e.handleAction(ui.Action{Kind: ui.ActionJump, Position: 10.0})
	e.handleAction(ui.Action{Kind: ui.ActionKey, Key: "z"})

	if pos := e.engine.Status().Position; pos != 10.0 {
		t.Errorf("Expected position unchanged at 10.0, got %.3f", pos)
	}
}

func TestWriteFileAction(t *testing.T) {
	e, _ := newTestEditor(t)

	if err := e.registry.Add(cue.CuePoint{Label: "Intro", Position: 1.0}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	e.handleAction(ui.Action{Kind: ui.ActionWriteFile})

	data, err := os.ReadFile(e.config.CuesPath)
	if err != nil {
		t.Fatalf("Expected cue file written: %v", err)
	}
	if !strings.Contains(string(data), "Intro") {
		t.Errorf("Expected written file to contain cue label, got %s", data)
	}
}
