// ABOUTME: Ordered cue point registry with validation and key assignment
// ABOUTME: Maintains position sort order and the derived key->cue dispatch map
package cue

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// autoKeys is the scan order for automatic key assignment.
const autoKeys = "123456789abcdefghijklmnopqrstuvwxyz"

// Registry is the ordered collection of cue points for one media
// duration. All mutations validate first and leave the registry
// untouched on failure. The registry is always sorted ascending by
// position.
type Registry struct {
	mu         sync.RWMutex
	duration   float64
	cues       []CuePoint
	keyMap     map[string]int // key -> index of first-registered cue
	collisions []string       // diagnostics, not errors
}

// NewRegistry creates an empty registry for media of the given
// duration in seconds.
func NewRegistry(duration float64) *Registry {
	return &Registry{
		duration: duration,
		keyMap:   make(map[string]int),
	}
}

// Duration returns the media duration the registry validates against.
func (r *Registry) Duration() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.duration
}

// SetDuration updates the media duration. Existing cues are not
// re-validated; new mutations are checked against the new value.
func (r *Registry) SetDuration(d float64) {
	r.mu.Lock()
	r.duration = d
	r.mu.Unlock()
}

// Len returns the number of cues.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cues)
}

// Cues returns a copy of the registry in position order.
func (r *Registry) Cues() []CuePoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CuePoint, len(r.cues))
	copy(out, r.cues)
	return out
}

// Cue returns the cue at index.
func (r *Registry) Cue(index int) (CuePoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.cues) {
		return CuePoint{}, false
	}
	return r.cues[index], true
}

// Add validates and inserts a cue point, keeping position order. A cue
// without a key gets the first unused symbol from '1'..'9' then
// 'a'..'z'. Returns a ValidationError (wrapped in an ErrorSet) and
// leaves the registry unchanged on rejection.
func (r *Registry) Add(c CuePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if err := r.validate(c, -1); err != nil {
		return err
	}
	if c.Key == "" {
		c.Key = r.firstFreeKey()
	}

	r.cues = append(r.cues, c)
	r.resort()
	r.rebuildKeyMap()
	return nil
}

// Update validates the replacement record and swaps it in at index.
// On failure the registry is unchanged. The order is restored if the
// position moved.
func (r *Registry) Update(index int, c CuePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.cues) {
		return &ErrorSet{Errors: []*ValidationError{{
			Field: "index", Reason: fmt.Sprintf("no cue at %d", index),
		}}}
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if err := r.validate(c, index); err != nil {
		return err
	}

	r.cues[index] = c
	r.resort()
	r.rebuildKeyMap()
	return nil
}

// Remove deletes the cue at index.
func (r *Registry) Remove(index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= len(r.cues) {
		return &ErrorSet{Errors: []*ValidationError{{
			Field: "index", Reason: fmt.Sprintf("no cue at %d", index),
		}}}
	}
	r.cues = append(r.cues[:index], r.cues[index+1:]...)
	r.rebuildKeyMap()
	return nil
}

// Clear removes all cues.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.cues = nil
	r.rebuildKeyMap()
	r.mu.Unlock()
}

// Serialize exports the registry as an ordered list of records.
func (r *Registry) Serialize() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, len(r.cues))
	for i, c := range r.cues {
		out[i] = c.ToRecord()
	}
	return out
}

// Deserialize replaces the registry contents with the given records.
// Every record is validated before any is committed; a single bad
// element aborts the whole import and leaves the prior contents
// untouched. Duplicate keys inside the batch are tolerated and
// resolved first-wins by the key map, matching the diagnostics path
// for collisions.
func (r *Registry) Deserialize(records []Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	incoming := make([]CuePoint, len(records))
	for i, rec := range records {
		c := fromRecord(rec)
		if err := r.validateBase(c); err != nil {
			return &ImportError{Index: i, Err: err}
		}
		incoming[i] = c
	}

	r.cues = incoming
	r.resort()
	r.rebuildKeyMap()
	return nil
}

// Resolve maps a key to its cue point. Collisions resolve to the
// first-registered cue, so a key never reaches two cues.
func (r *Registry) Resolve(key string) (CuePoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.keyMap[key]
	if !ok {
		return CuePoint{}, false
	}
	return r.cues[idx], true
}

// Collisions returns diagnostics for keys claimed by more than one
// cue since the last rebuild.
func (r *Registry) Collisions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.collisions))
	copy(out, r.collisions)
	return out
}

// validate runs the full mutation rules: base field checks plus key
// uniqueness among the other cues. skip is the index being replaced,
// -1 for an insert.
func (r *Registry) validate(c CuePoint, skip int) error {
	var errs []*ValidationError
	if err := r.validateBase(c); err != nil {
		errs = append(errs, err.(*ErrorSet).Errors...)
	}
	if c.Key != "" {
		for i, existing := range r.cues {
			if i == skip {
				continue
			}
			if existing.Key == c.Key {
				errs = append(errs, &ValidationError{
					Field:  "key",
					Reason: fmt.Sprintf("%q already bound to %q", c.Key, existing.Label),
				})
				break
			}
		}
	}
	if len(errs) > 0 {
		return &ErrorSet{Errors: errs}
	}
	return nil
}

// validateBase checks the per-record rules shared by add, update and
// import: label present, position within [0, duration], key at most
// one character.
func (r *Registry) validateBase(c CuePoint) error {
	var errs []*ValidationError
	if c.Label == "" {
		errs = append(errs, &ValidationError{Field: "label", Reason: "must not be empty"})
	}
	if c.Position < 0 || c.Position > r.duration {
		errs = append(errs, &ValidationError{
			Field:  "position",
			Reason: fmt.Sprintf("%.3f outside [0, %.3f]", c.Position, r.duration),
		})
	}
	if len([]rune(c.Key)) > 1 {
		errs = append(errs, &ValidationError{
			Field:  "key",
			Reason: fmt.Sprintf("%q is not a single character", c.Key),
		})
	}
	if len(errs) > 0 {
		return &ErrorSet{Errors: errs}
	}
	return nil
}

// firstFreeKey scans '1'..'9' then 'a'..'z' for a key no cue uses.
// Returns "" when all 35 symbols are taken.
func (r *Registry) firstFreeKey() string {
	used := make(map[string]bool, len(r.cues))
	for _, c := range r.cues {
		used[c.Key] = true
	}
	for _, k := range autoKeys {
		s := string(k)
		if !used[s] {
			return s
		}
	}
	return ""
}

// resort restores ascending position order. Stable so cues at the
// same position keep their registration order for key-map purposes.
func (r *Registry) resort() {
	sort.SliceStable(r.cues, func(i, j int) bool {
		return r.cues[i].Position < r.cues[j].Position
	})
}

// rebuildKeyMap regenerates the key->cue mapping. First-registered
// (first in position order after a stable sort) wins a contested key;
// later claimants become unreachable and are logged as diagnostics.
func (r *Registry) rebuildKeyMap() {
	r.keyMap = make(map[string]int, len(r.cues))
	r.collisions = nil
	for i, c := range r.cues {
		if c.Key == "" {
			continue
		}
		if first, taken := r.keyMap[c.Key]; taken {
			diag := fmt.Sprintf("key %q bound to %q; %q unreachable", c.Key, r.cues[first].Label, c.Label)
			r.collisions = append(r.collisions, diag)
			log.Printf("cue key collision: %s", diag)
			continue
		}
		r.keyMap[c.Key] = i
	}
}
