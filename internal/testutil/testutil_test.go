package testutil

import (
	"os"
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	start := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	c := NewClock(start)

	if got := c.Peek(); !got.Equal(start) {
		t.Errorf("Peek() = %v, want %v", got, start)
	}
	first := c.Now()
	second := c.Now()
	if !first.Equal(start.Add(time.Second)) {
		t.Errorf("first Now() = %v, want %v", first, start.Add(time.Second))
	}
	if !second.After(first) {
		t.Errorf("second Now() = %v, want after %v", second, first)
	}

	c.Step = time.Minute
	if got := c.Now(); !got.Equal(second.Add(time.Minute)) {
		t.Errorf("Now() after Step change = %v, want %v", got, second.Add(time.Minute))
	}
}

func TestEventually(t *testing.T) {
	calls := 0
	Eventually(t, "third call", func() bool {
		calls++
		return calls >= 3
	})
	if calls != 3 {
		t.Errorf("cond called %d times, want 3", calls)
	}
}

func TestIsolateDirs(t *testing.T) {
	dir := IsolateDirs(t)
	if got := os.Getenv("HOME"); got != dir {
		t.Errorf("HOME = %q, want %q", got, dir)
	}
	if got := os.Getenv("XDG_DATA_HOME"); got == "" {
		t.Error("XDG_DATA_HOME not set")
	}
}
