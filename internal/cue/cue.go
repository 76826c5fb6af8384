// ABOUTME: Cue point data model
// ABOUTME: Defines CuePoint, its persisted JSON record, and derived sample position
package cue

import "math"

// DefaultSampleRate is assumed when a cue does not carry one.
const DefaultSampleRate = 48000

// CuePoint is a named, optionally key-bound timeline position.
type CuePoint struct {
	Label      string
	Position   float64 // seconds
	Key        string  // single character, "" means unassigned
	SampleRate int
}

// SamplePosition returns the cue position expressed in samples at the
// cue's sample rate.
func (c CuePoint) SamplePosition() int64 {
	rate := c.SampleRate
	if rate == 0 {
		rate = DefaultSampleRate
	}
	return int64(math.Round(c.Position * float64(rate)))
}

// Record is the persisted form of a cue point. Exported cue sets are
// ordered arrays of these.
type Record struct {
	Position       float64 `json:"position"`
	Label          string  `json:"label"`
	Key            string  `json:"key,omitempty"`
	SampleRate     int     `json:"sample_rate,omitempty"`
	SamplePosition int64   `json:"sample_position,omitempty"`
}

// ToRecord converts a cue point to its persisted form.
func (c CuePoint) ToRecord() Record {
	return Record{
		Position:       c.Position,
		Label:          c.Label,
		Key:            c.Key,
		SampleRate:     c.SampleRate,
		SamplePosition: c.SamplePosition(),
	}
}

// fromRecord builds a cue point from a persisted record, applying the
// default sample rate when the record omits one.
func fromRecord(r Record) CuePoint {
	rate := r.SampleRate
	if rate == 0 {
		rate = DefaultSampleRate
	}
	return CuePoint{
		Label:      r.Label,
		Position:   r.Position,
		Key:        r.Key,
		SampleRate: rate,
	}
}
