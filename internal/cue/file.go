// ABOUTME: JSON file persistence for cue sets
// ABOUTME: Exports sorted record arrays and imports with all-or-nothing validation
package cue

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveFile writes the registry to path as a sorted JSON array of
// records.
func (r *Registry) SaveFile(path string) error {
	data, err := json.MarshalIndent(r.Serialize(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cue set: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cue set: %w", err)
	}
	return nil
}

// LoadFile imports a cue set from path, replacing the registry
// contents. The whole file is validated before anything is applied;
// a malformed root, a missing required field, or an out-of-range
// element rejects the import and leaves the registry untouched.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read cue set: %w", err)
	}
	records, err := ParseRecords(data)
	if err != nil {
		return err
	}
	return r.Deserialize(records)
}

// ParseRecords decodes a persisted cue array, checking that the root
// is an array and that every element carries the required position
// and label fields. Returns an ImportError on any structural problem.
func ParseRecords(data []byte) ([]Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ImportError{Index: -1, Err: fmt.Errorf("root is not a cue array: %w", err)}
	}

	records := make([]Record, len(raw))
	for i, elem := range raw {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(elem, &fields); err != nil {
			return nil, &ImportError{Index: i, Err: fmt.Errorf("element is not an object: %w", err)}
		}
		if _, ok := fields["position"]; !ok {
			return nil, &ImportError{Index: i, Err: fmt.Errorf("missing required field %q", "position")}
		}
		if _, ok := fields["label"]; !ok {
			return nil, &ImportError{Index: i, Err: fmt.Errorf("missing required field %q", "label")}
		}
		var rec Record
		if err := json.Unmarshal(elem, &rec); err != nil {
			return nil, &ImportError{Index: i, Err: err}
		}
		records[i] = rec
	}
	return records, nil
}
