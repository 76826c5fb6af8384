// ABOUTME: Main editor application orchestration
// ABOUTME: Coordinates all components (audio, follower, sync engine, UI)
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/audio"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/clock"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/cue"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/discovery"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/dispatch"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/follower"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/playback"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/store"
	"github.com/pmoneynz/YouTube-cue-point-editor/internal/ui"
)

// Config holds editor configuration
type Config struct {
	MediaPath    string
	FollowerAddr string
	CuesPath     string
	LibraryPath  string
	SetName      string
	Name         string
	Port         int
	Duration     float64
	NoTUI        bool
}

// Editor is the main editor application
type Editor struct {
	config     Config
	clk        clock.Clock
	master     *audio.Engine
	registry   *cue.Registry
	engine     *playback.Engine
	dispatcher *dispatch.Dispatcher
	remote     *follower.Remote
	discovery  *discovery.Manager
	library    *store.Store
	ctrl       *ui.Control
	tuiProg    *tea.Program
	ctx        context.Context
	cancel     context.CancelFunc
}

// New creates a new editor
func New(config Config) *Editor {
	ctx, cancel := context.WithCancel(context.Background())

	if config.SetName == "" {
		config.SetName = "default"
	}

	return &Editor{
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start starts the editor
func (e *Editor) Start() error {
	duration := e.config.Duration

	// Master audio is optional; without media the monotonic system
	// clock drives sessions instead.
	if e.config.MediaPath != "" {
		master, err := audio.Open(e.config.MediaPath)
		if err != nil {
			return fmt.Errorf("failed to open media: %w", err)
		}
		e.master = master
		e.clk = master
		duration = master.Duration()
	} else {
		e.clk = clock.NewSystem()
	}

	e.registry = cue.NewRegistry(duration)
	if e.config.CuesPath != "" {
		if err := e.registry.LoadFile(e.config.CuesPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Printf("No cue file at %s, starting empty", e.config.CuesPath)
			} else {
				return fmt.Errorf("failed to load cues: %w", err)
			}
		} else {
			log.Printf("Loaded %d cues from %s", e.registry.Len(), e.config.CuesPath)
		}
	}

	if e.config.LibraryPath != "" {
		library, err := store.Open(e.config.LibraryPath)
		if err != nil {
			return fmt.Errorf("failed to open cue library: %w", err)
		}
		e.library = library

		// The file takes precedence; the library set fills in when the
		// file produced nothing.
		if e.registry.Len() == 0 {
			records, err := e.library.LoadSet(e.config.SetName)
			if err != nil {
				log.Printf("No library set %q: %v", e.config.SetName, err)
			} else if err := e.registry.Deserialize(records); err != nil {
				log.Printf("Library set %q rejected: %v", e.config.SetName, err)
			} else {
				log.Printf("Loaded %d cues from library set %q", e.registry.Len(), e.config.SetName)
			}
		}
	}

	cfg := playback.Config{
		Clock:     e.clk,
		Scheduler: playback.NewTimerScheduler(),
		Duration:  duration,
	}
	if e.master != nil {
		cfg.Audio = e.master
	}
	e.engine = playback.NewEngine(cfg)

	e.dispatcher = dispatch.NewDispatcher(e.registry, dispatch.DefaultDebounce, e.engine.Jump)
	e.dispatcher.Attach()

	// Connect a follower directly, or browse for one.
	if e.config.FollowerAddr != "" {
		if err := e.connect(e.config.FollowerAddr); err != nil {
			return fmt.Errorf("follower connection failed: %w", err)
		}
	} else {
		e.discovery = discovery.NewManager(discovery.Config{
			InstanceName: e.config.Name,
			Port:         e.config.Port,
		})

		if err := e.discovery.Advertise(); err != nil {
			log.Printf("mDNS advertise failed: %v", err)
		}
		if err := e.discovery.Browse(); err != nil {
			log.Printf("mDNS browse failed: %v", err)
		}

		go e.handleDiscovery()
	}

	e.ctrl = ui.NewControl()
	if !e.config.NoTUI {
		tuiProg, err := ui.Run(e.ctrl)
		if err != nil {
			return fmt.Errorf("failed to start TUI: %w", err)
		}
		e.tuiProg = tuiProg

		go e.tuiProg.Run()
		go e.statusLoop()
	}

	go e.handleActions()

	<-e.ctx.Done()

	return nil
}

// Stop shuts the editor down
func (e *Editor) Stop() {
	e.cancel()

	if e.tuiProg != nil {
		e.tuiProg.Quit()
	}
	if e.discovery != nil {
		e.discovery.Stop()
	}
	e.engine.Close()
	if e.remote != nil {
		e.remote.Close()
	}
	if e.master != nil {
		e.master.Close()
	}
	if e.library != nil {
		e.library.Close()
	}
}

// handleDiscovery waits for a follower to appear
func (e *Editor) handleDiscovery() {
	for {
		select {
		case info := <-e.discovery.Followers():
			log.Printf("Attempting connection to %s", info.Addr())

			if err := e.connect(info.Addr()); err != nil {
				log.Printf("Connection failed: %v", err)
				continue
			}
			return

		case <-e.ctx.Done():
			return
		}
	}
}

// connect dials a follower surface and attaches it to the engine
func (e *Editor) connect(addr string) error {
	remote := follower.NewRemote(addr)
	if err := remote.Connect(); err != nil {
		return err
	}

	e.remote = remote
	e.engine.AttachFollower(remote)
	log.Printf("Connected to follower: %s", addr)
	return nil
}

// handleActions processes user requests from the TUI
func (e *Editor) handleActions() {
	for {
		select {
		case a := <-e.ctrl.Actions:
			e.handleAction(a)

		case <-e.ctrl.Quit:
			e.Stop()
			return

		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Editor) handleAction(a ui.Action) {
	switch a.Kind {
	case ui.ActionToggle:
		e.engine.Toggle()
		e.armSourceEnded()

	case ui.ActionKey:
		e.dispatcher.Dispatch(dispatch.KeyEvent{Key: a.Key, At: e.clk.Now()})
		e.armSourceEnded()

	case ui.ActionJump:
		e.engine.Jump(a.Position)
		e.armSourceEnded()

	case ui.ActionAddCue:
		pos := e.engine.Status().Position
		c := cue.CuePoint{
			Label:    fmt.Sprintf("Cue %d", e.registry.Len()+1),
			Position: pos,
		}
		if e.master != nil {
			c.SampleRate = e.master.SampleRate()
		}
		if err := e.registry.Add(c); err != nil {
			log.Printf("Add cue failed: %v", err)
			e.pushMessage(fmt.Sprintf("Add failed: %v", err))
		}

	case ui.ActionRemoveCue:
		if err := e.registry.Remove(a.Index); err != nil {
			log.Printf("Remove cue failed: %v", err)
		}

	case ui.ActionSaveLibrary:
		if e.library == nil {
			e.pushMessage("No cue library configured")
			return
		}
		if err := e.library.SaveSet(e.config.SetName, e.registry.Serialize()); err != nil {
			log.Printf("Library save failed: %v", err)
			e.pushMessage(fmt.Sprintf("Save failed: %v", err))
		} else {
			e.pushMessage(fmt.Sprintf("Saved set %q", e.config.SetName))
		}

	case ui.ActionWriteFile:
		if e.config.CuesPath == "" {
			e.pushMessage("No cue file configured")
			return
		}
		if err := e.registry.SaveFile(e.config.CuesPath); err != nil {
			log.Printf("Cue file write failed: %v", err)
			e.pushMessage(fmt.Sprintf("Write failed: %v", err))
		} else {
			e.pushMessage(fmt.Sprintf("Wrote %d cues", e.registry.Len()))
		}
	}
}

// armSourceEnded re-arms the end-of-stream callback for the session
// created by the latest transition. The captured identity guarantees
// a late callback from a superseded source is ignored.
func (e *Editor) armSourceEnded() {
	if e.master == nil {
		return
	}
	id := e.engine.SessionID()
	e.master.SetOnEnded(func() {
		e.engine.SourceEnded(id)
	})
}

// statusLoop pushes periodic state snapshots into the TUI
func (e *Editor) statusLoop() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.tuiProg.Send(e.statusMsg())

		case <-e.ctx.Done():
			return
		}
	}
}

func (e *Editor) statusMsg() ui.StatusMsg {
	st := e.engine.Status()
	playing := st.Playing
	connected := e.remote != nil && e.remote.Connected()

	msg := ui.StatusMsg{
		Playing:     &playing,
		Connected:   &connected,
		Position:    st.Position,
		Duration:    st.Duration,
		InSync:      st.Sync.InSync,
		LastDrift:   st.Sync.LastDrift,
		MaxDrift:    st.Sync.MaxDrift,
		AvgDrift:    st.Sync.AvgDrift,
		Corrections: st.Sync.Corrections,
		Cues:        e.registry.Cues(),
	}
	if e.config.FollowerAddr != "" {
		msg.FollowerName = e.config.FollowerAddr
	}
	return msg
}

func (e *Editor) pushMessage(text string) {
	if e.tuiProg == nil {
		log.Print(text)
		return
	}
	e.tuiProg.Send(ui.StatusMsg{Message: text})
}
