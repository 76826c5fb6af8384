// ABOUTME: Tests for cue set file persistence
// ABOUTME: Covers file round-trips and structural import rejection
package cue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileRoundTrip(t *testing.T) {
	r := NewRegistry(240.0)
	mustAdd(t, r, CuePoint{Label: "verse", Position: 30.0})
	mustAdd(t, r, CuePoint{Label: "chorus", Position: 75.25, Key: "c"})

	path := filepath.Join(t.TempDir(), "cues.json")
	if err := r.SaveFile(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := NewRegistry(240.0)
	if err := loaded.LoadFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}

	a, b := r.Cues(), loaded.Cues()
	if len(a) != len(b) {
		t.Fatalf("expected %d cues, got %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("cue %d mismatch: %+v != %+v", i, a[i], b[i])
		}
	}
}

func TestParseRejectsNonArrayRoot(t *testing.T) {
	_, err := ParseRecords([]byte(`{"position": 1, "label": "x"}`))
	var imp *ImportError
	if !errors.As(err, &imp) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if imp.Index != -1 {
		t.Errorf("expected container-level index -1, got %d", imp.Index)
	}
}

func TestParseRejectsMissingFields(t *testing.T) {
	cases := []string{
		`[{"label": "no position"}]`,
		`[{"position": 3.5}]`,
		`[{"position": 1, "label": "ok"}, 42]`,
	}
	for _, body := range cases {
		if _, err := ParseRecords([]byte(body)); err == nil {
			t.Errorf("expected rejection of %s", body)
		}
	}
}

func TestLoadFileLeavesRegistryOnBadImport(t *testing.T) {
	r := NewRegistry(100.0)
	mustAdd(t, r, CuePoint{Label: "keep", Position: 5.0})

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"label": "no position"}]`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := r.LoadFile(path); err == nil {
		t.Fatal("expected import failure")
	}
	if r.Len() != 1 {
		t.Errorf("registry mutated by failed file import: %d cues", r.Len())
	}
}
