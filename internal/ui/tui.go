// ABOUTME: TUI initialization and control channels
// ABOUTME: Wraps the bubbletea program and carries editor actions out of the UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ActionKind identifies an editor action requested from the TUI.
type ActionKind int

const (
	// ActionToggle flips play/pause.
	ActionToggle ActionKind = iota
	// ActionKey is a raw key for cue dispatch.
	ActionKey
	// ActionJump seeks to an absolute position.
	ActionJump
	// ActionAddCue adds a cue at the current playback position.
	ActionAddCue
	// ActionRemoveCue deletes the cue at Index.
	ActionRemoveCue
	// ActionSaveLibrary stores the registry in the cue-set library.
	ActionSaveLibrary
	// ActionWriteFile exports the registry to the cue JSON file.
	ActionWriteFile
)

// Action is one user request leaving the TUI.
type Action struct {
	Kind     ActionKind
	Key      string
	Position float64
	Index    int
}

// QuitMsg signals a requested shutdown.
type QuitMsg struct{}

// Control holds channels for editor control communication.
type Control struct {
	Actions chan Action
	Quit    chan QuitMsg
}

// NewControl creates a new control handler.
func NewControl() *Control {
	return &Control{
		Actions: make(chan Action, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// Run starts the TUI.
func Run(ctrl *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(ctrl), tea.WithAltScreen())
	return p, nil
}
