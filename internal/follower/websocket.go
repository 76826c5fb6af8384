// ABOUTME: WebSocket remote follower surface
// ABOUTME: Streams position reports in, sends seek/play/pause commands out
package follower

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the wire format spoken with a remote surface. Inbound
// messages are position reports; outbound messages are commands.
type Message struct {
	Type     string  `json:"type"` // "position", "seek", "play", "pause"
	Position float64 `json:"position,omitempty"`
}

// Remote is a Surface backed by a WebSocket connection to a remote
// playback surface. Position reports are cached so Position never
// blocks the control loop; commands are synchronous writes.
type Remote struct {
	mu         sync.RWMutex
	conn       *websocket.Conn
	addr       string
	position   float64
	reportedAt time.Time
	connected  bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewRemote creates a disconnected remote surface for addr (host:port).
func NewRemote(addr string) *Remote {
	ctx, cancel := context.WithCancel(context.Background())
	return &Remote{
		addr:   addr,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the remote surface and starts the report reader.
func (r *Remote) Connect() error {
	u := url.URL{Scheme: "ws", Host: r.addr, Path: "/follower"}
	log.Printf("Connecting to follower surface %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	r.mu.Lock()
	r.conn = conn
	r.connected = true
	r.mu.Unlock()

	go r.readReports()
	return nil
}

// Connected reports whether the surface link is up.
func (r *Remote) Connected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// readReports consumes inbound messages until the connection drops.
func (r *Remote) readReports() {
	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		_, data, err := r.conn.ReadMessage()
		if err != nil {
			log.Printf("Follower read error: %v", err)
			r.mu.Lock()
			r.connected = false
			r.mu.Unlock()
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Malformed follower message: %v", err)
			continue
		}
		if msg.Type == "position" {
			r.mu.Lock()
			r.position = msg.Position
			r.reportedAt = time.Now()
			r.mu.Unlock()
		}
	}
}

// Position returns the most recently reported position.
func (r *Remote) Position() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.position
}

// ReportAge returns how stale the cached position is.
func (r *Remote) ReportAge() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.reportedAt.IsZero() {
		return 0
	}
	return time.Since(r.reportedAt)
}

// SetPosition commands a seek on the remote surface. The cached
// position is updated optimistically so the correction loop does not
// re-fire before the next report round-trips.
func (r *Remote) SetPosition(pos float64) error {
	if err := r.send(Message{Type: "seek", Position: pos}); err != nil {
		return err
	}
	r.mu.Lock()
	r.position = pos
	r.mu.Unlock()
	return nil
}

// Play commands the remote surface to start.
func (r *Remote) Play() error {
	return r.send(Message{Type: "play"})
}

// Pause commands the remote surface to stop.
func (r *Remote) Pause() error {
	return r.send(Message{Type: "pause"})
}

func (r *Remote) send(msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.connected || r.conn == nil {
		return fmt.Errorf("follower surface not connected")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := r.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Close tears the connection down.
func (r *Remote) Close() error {
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = false
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
