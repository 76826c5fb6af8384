// ABOUTME: Master audio engine over a fully decoded MP3 buffer
// ABOUTME: Owns the authoritative clock and starts playback at arbitrary offsets
package audio

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/clock"
)

// bytesPerFrame is 16-bit stereo: 2 bytes x 2 channels.
const bytesPerFrame = 4

// Engine decodes one MP3 buffer up front and plays it through oto.
// It is the master side of the sync loop: Now is the authoritative
// monotonic clock, and PlayAt reports the clock value at which audio
// actually began, which callers use as the session origin.
type Engine struct {
	mu         sync.Mutex
	clk        *clock.System
	pcm        []byte
	sampleRate int
	otoCtx     *oto.Context
	player     *oto.Player
	playerGen  int
	onEnded    func()
}

// Open decodes the MP3 at path and prepares the output device.
func Open(path string) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	// Full decode up front so seeks are byte-offset arithmetic
	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   decoder.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	otoCtx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	log.Printf("Master audio ready: %s, %dHz, %.1fs", path, decoder.SampleRate(),
		float64(len(pcm))/float64(decoder.SampleRate()*bytesPerFrame))

	return &Engine{
		clk:        clock.NewSystem(),
		pcm:        pcm,
		sampleRate: decoder.SampleRate(),
		otoCtx:     otoCtx,
	}, nil
}

// Now returns the master clock in seconds.
func (e *Engine) Now() float64 {
	return e.clk.Now()
}

// Duration returns the decoded buffer length in seconds.
func (e *Engine) Duration() float64 {
	return float64(len(e.pcm)) / float64(e.sampleRate*bytesPerFrame)
}

// SampleRate returns the buffer sample rate.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// SetOnEnded registers a callback fired when a started buffer plays
// to completion. A superseding PlayAt or Stop disarms the pending
// callback; only the most recent start can fire it.
func (e *Engine) SetOnEnded(fn func()) {
	e.mu.Lock()
	e.onEnded = fn
	e.mu.Unlock()
}

// PlayAt starts playback at offset seconds and returns the master
// clock value at which it began. Any prior playback is stopped first.
func (e *Engine) PlayAt(offset float64) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	byteOff := int(offset*float64(e.sampleRate)) * bytesPerFrame
	if byteOff < 0 {
		byteOff = 0
	}
	if byteOff > len(e.pcm) {
		byteOff = len(e.pcm)
	}

	e.stopLocked()
	e.playerGen++
	gen := e.playerGen

	e.player = e.otoCtx.NewPlayer(bytes.NewReader(e.pcm[byteOff:]))
	e.player.Play()
	origin := e.clk.Now()

	go e.watchEnd(e.player, gen)
	return origin, nil
}

// Stop halts playback and disarms the ended callback.
func (e *Engine) Stop() {
	e.mu.Lock()
	e.playerGen++
	e.stopLocked()
	e.mu.Unlock()
}

func (e *Engine) stopLocked() {
	if e.player != nil {
		if err := e.player.Close(); err != nil {
			log.Printf("Audio player close: %v", err)
		}
		e.player = nil
	}
}

// watchEnd polls the player until its buffer drains, then fires the
// ended callback if this start has not been superseded.
func (e *Engine) watchEnd(p *oto.Player, gen int) {
	for {
		time.Sleep(200 * time.Millisecond)

		e.mu.Lock()
		if gen != e.playerGen {
			e.mu.Unlock()
			return
		}
		if p.IsPlaying() {
			e.mu.Unlock()
			continue
		}
		fn := e.onEnded
		e.player = nil
		e.mu.Unlock()

		if fn != nil {
			fn()
		}
		return
	}
}

// Close releases the output device.
func (e *Engine) Close() error {
	e.Stop()
	if e.otoCtx != nil {
		return e.otoCtx.Suspend()
	}
	return nil
}
