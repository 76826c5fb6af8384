// ABOUTME: Playback session identity and anchor pair
// ABOUTME: Origin and offset are immutable once created; jumps replace the whole session
package playback

import "github.com/google/uuid"

// Session anchors the follower timeline to the master clock. Origin is
// the master-clock timestamp at session start and Offset the follower
// position corresponding to it. A session is never mutated after
// creation; play and jump replace it wholesale, so origin and offset
// can never be observed half-updated. The ID guards superseded
// sessions: callbacks from a discarded source compare identities and
// become inert.
type Session struct {
	ID     uuid.UUID
	Origin float64
	Offset float64
}

func newSession(origin, offset float64) *Session {
	return &Session{
		ID:     uuid.New(),
		Origin: origin,
		Offset: offset,
	}
}
