// ABOUTME: Tests for the correction controller
// ABOUTME: Covers threshold, throttle, clamping, idempotence, and forced passes
package sync

import (
	"errors"
	"testing"

	"github.com/pmoneynz/YouTube-cue-point-editor/internal/clock"
)

// seekRecorder captures assigned positions.
type seekRecorder struct {
	positions []float64
	err       error
}

func (s *seekRecorder) seek(pos float64) error {
	if s.err != nil {
		return s.err
	}
	s.positions = append(s.positions, pos)
	return nil
}

func TestCorrectionFiresOnLargeDrift(t *testing.T) {
	// Session origin 5.0, offset 5.0; at master time 11.5 the follower
	// should be at 11.5 but reports 5.0 (drift -6.5).
	c := NewCorrector(0.05, DefaultThrottle, 300.0)
	rec := &seekRecorder{}

	expected := clock.ExpectedPosition(5.0, 5.0, 11.5)
	if expected != 11.5 {
		t.Fatalf("expected position 11.5, got %v", expected)
	}

	applied := c.Correct(expected, 5.0, 11.5, false, rec.seek)
	if !applied {
		t.Fatal("expected correction for -6.5s drift")
	}
	if len(rec.positions) != 1 || rec.positions[0] != 11.5 {
		t.Errorf("expected seek to 11.5, got %v", rec.positions)
	}
	if c.Corrections() != 1 {
		t.Errorf("expected 1 correction, got %d", c.Corrections())
	}
}

func TestNoCorrectionWithinThreshold(t *testing.T) {
	// Follower at 20.02 against expected 20.0: inside the 0.05 window.
	c := NewCorrector(0.05, DefaultThrottle, 300.0)
	rec := &seekRecorder{}

	expected := clock.ExpectedPosition(15.0, 20.0, 15.0)
	applied := c.Correct(expected, 20.02, 15.0, false, rec.seek)
	if applied {
		t.Error("expected no correction for 0.02s drift")
	}
	if c.Corrections() != 0 {
		t.Errorf("expected 0 corrections, got %d", c.Corrections())
	}
}

func TestCorrectionTargetClampedToDuration(t *testing.T) {
	c := NewCorrector(0.05, DefaultThrottle, 120.0)
	rec := &seekRecorder{}

	applied := c.Correct(165.0, 100.0, 200.0, false, rec.seek)
	if !applied {
		t.Fatal("expected correction")
	}
	if rec.positions[0] != 120.0 {
		t.Errorf("expected clamp to 120.0, got %v", rec.positions[0])
	}
}

func TestCorrectionTargetClampedToZero(t *testing.T) {
	c := NewCorrector(0.05, DefaultThrottle, 120.0)
	rec := &seekRecorder{}

	applied := c.Correct(-3.0, 4.0, 1.0, false, rec.seek)
	if !applied {
		t.Fatal("expected correction")
	}
	if rec.positions[0] != 0.0 {
		t.Errorf("expected clamp to 0, got %v", rec.positions[0])
	}
}

func TestThrottleSuppressesSecondCorrection(t *testing.T) {
	// Two correction-worthy ticks 40ms apart with a 100ms throttle:
	// only the first applies.
	c := NewCorrector(0.05, 0.100, 300.0)
	rec := &seekRecorder{}

	if !c.Correct(10.0, 5.0, 1.000, false, rec.seek) {
		t.Fatal("first correction should apply")
	}
	if c.Correct(10.1, 5.0, 1.040, false, rec.seek) {
		t.Error("second correction 40ms later should be suppressed")
	}
	if c.Corrections() != 1 {
		t.Errorf("expected 1 correction, got %d", c.Corrections())
	}

	// After the throttle window it applies again
	if !c.Correct(10.2, 5.0, 1.150, false, rec.seek) {
		t.Error("correction after throttle window should apply")
	}
}

func TestForcedCorrectionSkipsThrottle(t *testing.T) {
	c := NewCorrector(0.05, 0.100, 300.0)
	rec := &seekRecorder{}

	if !c.Correct(10.0, 5.0, 1.000, false, rec.seek) {
		t.Fatal("first correction should apply")
	}
	// A cue jump forces through the throttle immediately
	if !c.Correct(50.0, 5.0, 1.010, true, rec.seek) {
		t.Error("forced correction should skip throttle")
	}
}

func TestCorrectionIdempotent(t *testing.T) {
	c := NewCorrector(0.05, 0.100, 300.0)
	rec := &seekRecorder{}

	if !c.Correct(10.0, 5.0, 1.000, false, rec.seek) {
		t.Fatal("expected correction")
	}

	// Same inputs with the follower now on target: the epsilon check
	// stops a redundant seek even when forced.
	if c.Correct(10.0, 10.0, 2.000, true, rec.seek) {
		t.Error("expected idempotent no-op on corrected position")
	}
	if len(rec.positions) != 1 {
		t.Errorf("expected a single seek, got %v", rec.positions)
	}
}

func TestRejectedSeekNotCounted(t *testing.T) {
	c := NewCorrector(0.05, 0.100, 300.0)
	rec := &seekRecorder{err: errors.New("not buffered")}

	if c.Correct(10.0, 5.0, 1.000, false, rec.seek) {
		t.Error("rejected seek should not count as applied")
	}
	if c.Corrections() != 0 {
		t.Errorf("expected 0 corrections, got %d", c.Corrections())
	}

	// And it must not consume the throttle window
	rec.err = nil
	if !c.Correct(10.0, 5.0, 1.010, false, rec.seek) {
		t.Error("correction should apply once the follower accepts")
	}
}

func TestCorrectorReset(t *testing.T) {
	c := NewCorrector(0.05, 0.100, 300.0)
	rec := &seekRecorder{}

	c.Correct(10.0, 5.0, 1.000, false, rec.seek)
	c.Reset()

	if c.Corrections() != 0 {
		t.Errorf("expected reset count, got %d", c.Corrections())
	}
	if _, ok := c.LastCorrectedAt(); ok {
		t.Error("expected no last-correction time after reset")
	}
}
