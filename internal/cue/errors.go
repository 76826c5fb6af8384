// ABOUTME: Error types for cue registry mutations and imports
// ABOUTME: ValidationError rejects a single mutation, ImportError rejects a whole batch
package cue

import (
	"fmt"
	"strings"
)

// ValidationError reports why a cue point was rejected. The registry is
// left unchanged when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid cue %s: %s", e.Field, e.Reason)
}

// ErrorSet aggregates validation failures for one cue point.
type ErrorSet struct {
	Errors []*ValidationError
}

func (e *ErrorSet) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, v := range e.Errors {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// ImportError reports a failed batch import. No element of the batch is
// applied when one is returned.
type ImportError struct {
	Index int // offending element, -1 for malformed container
	Err   error
}

func (e *ImportError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("cue import failed: %v", e.Err)
	}
	return fmt.Sprintf("cue import failed at element %d: %v", e.Index, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
