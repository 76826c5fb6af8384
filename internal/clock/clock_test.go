// ABOUTME: Tests for the master clock model
// ABOUTME: Covers expected-position monotonicity, clamping, and the manual clock
package clock

import "testing"

func TestExpectedPositionBasic(t *testing.T) {
	// Session started at master time 5.0 with follower at 10.0.
	// 6.5 seconds later the follower should be at 16.5.
	got := ExpectedPosition(5.0, 10.0, 11.5)
	if got != 16.5 {
		t.Errorf("expected 16.5, got %v", got)
	}
}

func TestExpectedPositionAtOrigin(t *testing.T) {
	got := ExpectedPosition(15.0, 20.0, 15.0)
	if got != 20.0 {
		t.Errorf("expected 20.0 at origin, got %v", got)
	}
}

func TestExpectedPositionNeverNegative(t *testing.T) {
	// Offset near zero with now slightly before origin must clamp to 0,
	// not go negative.
	got := ExpectedPosition(10.0, 0.5, 9.0)
	if got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}
}

func TestExpectedPositionNonDecreasing(t *testing.T) {
	origin, offset := 3.0, 7.5
	prev := -1.0
	for now := 0.0; now < 20.0; now += 0.37 {
		pos := ExpectedPosition(origin, offset, now)
		if pos < prev {
			t.Fatalf("position decreased: %v -> %v at now=%v", prev, pos, now)
		}
		if pos < 0 {
			t.Fatalf("negative position %v at now=%v", pos, now)
		}
		prev = pos
	}
}

func TestManualClockAdvance(t *testing.T) {
	c := NewManual(2.0)
	if c.Now() != 2.0 {
		t.Errorf("expected 2.0, got %v", c.Now())
	}

	c.Advance(1.5)
	if c.Now() != 3.5 {
		t.Errorf("expected 3.5, got %v", c.Now())
	}

	// Negative advance must not move the clock backwards
	c.Advance(-10)
	if c.Now() != 3.5 {
		t.Errorf("manual clock moved backwards: %v", c.Now())
	}
}

func TestManualClockSet(t *testing.T) {
	c := NewManual(5.0)
	c.Set(8.0)
	if c.Now() != 8.0 {
		t.Errorf("expected 8.0, got %v", c.Now())
	}

	// Setting into the past is ignored
	c.Set(1.0)
	if c.Now() != 8.0 {
		t.Errorf("Set moved clock backwards: %v", c.Now())
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	c := NewSystem()
	prev := c.Now()
	for i := 0; i < 100; i++ {
		now := c.Now()
		if now < prev {
			t.Fatalf("system clock went backwards: %v -> %v", prev, now)
		}
		prev = now
	}
}
