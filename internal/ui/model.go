// ABOUTME: Bubbletea model for the cue point editor TUI
// ABOUTME: Renders transport, cue table, and sync statistics; routes keys to actions
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/cue"
)

// Model represents the TUI state.
type Model struct {
	// Transport
	playing  bool
	position float64
	duration float64

	// Sync
	inSync      bool
	lastDrift   float64
	maxDrift    float64
	avgDrift    float64
	corrections int

	// Follower
	followerName string
	connected    bool

	// Cues
	cues     []cue.CuePoint
	selected int

	// Feedback line
	message string

	ctrl *Control

	// Dimensions
	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(ctrl *Control) Model {
	return Model{ctrl: ctrl}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderTransport()
	s += m.renderCues()
	s += m.renderSync()
	s += m.renderHelp()

	return s
}

// renderHeader renders the follower link status.
func (m Model) renderHeader() string {
	link := "No follower surface"
	if m.connected {
		link = fmt.Sprintf("Follower: %s", m.followerName)
	}

	return fmt.Sprintf(`┌─ Cue Point Editor ───────────────────────────────────┐
│ %-52s │
├──────────────────────────────────────────────────────┤
`, truncate(link, 52))
}

// renderTransport renders the playback state and position.
func (m Model) renderTransport() string {
	state := "Idle"
	if m.playing {
		state = "Playing"
	}
	return fmt.Sprintf("│ %-7s  %9.3fs / %.3fs%-21s │\n",
		state, m.position, m.duration, "")
}

// renderCues renders the cue table with the selection marker.
func (m Model) renderCues() string {
	s := "├──────────────────────────────────────────────────────┤\n"
	if len(m.cues) == 0 {
		s += "│ No cue points                                        │\n"
		return s
	}

	for i, c := range m.cues {
		marker := " "
		if i == m.selected {
			marker = ">"
		}
		key := c.Key
		if key == "" {
			key = "-"
		}
		line := fmt.Sprintf("%s [%s] %9.3fs  %s", marker, key, c.Position, c.Label)
		s += fmt.Sprintf("│ %-52s │\n", truncate(line, 52))
	}
	return s
}

// renderSync renders drift statistics.
func (m Model) renderSync() string {
	icon := "✓"
	if !m.inSync {
		icon = "✗"
	}
	return fmt.Sprintf(`├──────────────────────────────────────────────────────┤
│ Sync %s drift %+7.1fms  max %6.1fms  avg %6.1fms    │
│ Corrections: %-39d │
`, icon, m.lastDrift*1000, m.maxDrift*1000, m.avgDrift*1000, m.corrections)
}

// renderHelp renders keyboard shortcuts.
func (m Model) renderHelp() string {
	s := ""
	if m.message != "" {
		s += fmt.Sprintf("│ %-52s │\n", truncate(m.message, 52))
	}
	s += `│ space:Play/Pause  ↑/↓:Select  enter:Jump  A:Add      │
│ X:Delete  S:Save set  W:Write file  q:Quit           │
└──────────────────────────────────────────────────────┘
`
	return s
}

// handleKey handles keyboard input. Uppercase keys are editor
// commands; bare lowercase letters and digits go to cue dispatch.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quit()
		return m, tea.Quit
	case " ":
		m.send(Action{Kind: ActionToggle})
	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < len(m.cues)-1 {
			m.selected++
		}
	case "enter":
		if m.selected < len(m.cues) {
			m.send(Action{Kind: ActionJump, Position: m.cues[m.selected].Position})
		}
	case "A":
		m.send(Action{Kind: ActionAddCue})
	case "X":
		if m.selected < len(m.cues) {
			m.send(Action{Kind: ActionRemoveCue, Index: m.selected})
		}
	case "S":
		m.send(Action{Kind: ActionSaveLibrary})
	case "W":
		m.send(Action{Kind: ActionWriteFile})
	default:
		if key := msg.String(); len(key) == 1 {
			m.send(Action{Kind: ActionKey, Key: key})
		}
	}

	return m, nil
}

// send forwards an action without blocking the render loop.
func (m Model) send(a Action) {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Actions <- a:
	default:
	}
}

func (m Model) quit() {
	if m.ctrl == nil {
		return
	}
	select {
	case m.ctrl.Quit <- QuitMsg{}:
	default:
	}
}

// applyStatus updates model from a status message.
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Playing != nil {
		m.playing = *msg.Playing
	}
	if msg.Connected != nil {
		m.connected = *msg.Connected
	}
	if msg.FollowerName != "" {
		m.followerName = msg.FollowerName
	}
	m.position = msg.Position
	if msg.Duration != 0 {
		m.duration = msg.Duration
	}
	m.inSync = msg.InSync
	m.lastDrift = msg.LastDrift
	m.maxDrift = msg.MaxDrift
	m.avgDrift = msg.AvgDrift
	m.corrections = msg.Corrections
	if msg.Cues != nil {
		m.cues = msg.Cues
		if m.selected >= len(m.cues) {
			m.selected = len(m.cues) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
	}
	if msg.Message != "" {
		m.message = msg.Message
	}
}

// StatusMsg updates TUI state.
type StatusMsg struct {
	Playing      *bool
	Connected    *bool
	FollowerName string
	Position     float64
	Duration     float64
	InSync       bool
	LastDrift    float64
	MaxDrift     float64
	AvgDrift     float64
	Corrections  int
	Cues         []cue.CuePoint
	Message      string
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
