// ABOUTME: Entry point for the cue point editor
// ABOUTME: Parses CLI flags and starts the editor application
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/app"
)

var (
	mediaPath    = flag.String("media", "", "MP3 file to play as the master source")
	followerAddr = flag.String("follower", "", "Manual follower address (skip mDNS)")
	cuesPath     = flag.String("cues", "cues.json", "Cue set JSON file")
	libraryPath  = flag.String("library", "", "SQLite cue library path (empty disables)")
	setName      = flag.String("set", "", "Cue set name in the library (default: default)")
	duration     = flag.Float64("duration", 300, "Media duration in seconds when no media file is given")
	port         = flag.Int("port", 8937, "Port for mDNS advertisement")
	name         = flag.String("name", "", "Editor friendly name (default: hostname-cuepoint-editor)")
	logFile      = flag.String("log-file", "cuepoint-editor.log", "Log file path")
	noTUI        = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	streamLogs   = flag.Bool("stream-logs", false, "Alias for -no-tui")
)

func main() {
	flag.Parse()

	useTUI := !(*noTUI || *streamLogs)

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		multiWriter := io.MultiWriter(os.Stdout, f)
		log.SetOutput(multiWriter)
	}

	// Determine editor name
	editorName := *name
	if editorName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		editorName = fmt.Sprintf("%s-cuepoint-editor", hostname)
	}

	if !useTUI {
		log.Printf("Starting Cue Point Editor: %s", editorName)
		log.Printf("TUI disabled - logging to file for debugging")
	}

	editor := app.New(app.Config{
		MediaPath:    *mediaPath,
		FollowerAddr: *followerAddr,
		CuesPath:     *cuesPath,
		LibraryPath:  *libraryPath,
		SetName:      *setName,
		Name:         editorName,
		Port:         *port,
		Duration:     *duration,
		NoTUI:        !useTUI,
	})

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Printf("Shutdown signal received")
		editor.Stop()
	}()

	if err := editor.Start(); err != nil {
		log.Fatalf("Editor failed: %v", err)
	}

	log.Printf("Editor stopped")
}
