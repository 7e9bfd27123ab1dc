// Package testutil provides testing utilities for taskboard tests.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// DefaultWait bounds Eventually. Snapshots are pushed on background
// goroutines, so tests poll for them instead of sleeping a fixed time.
const DefaultWait = 3 * time.Second

// Eventually polls cond until it holds, failing the test with desc after
// DefaultWait.
func Eventually(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(DefaultWait)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", desc)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// Clock is a deterministic time source that advances by Step on every
// reading, so that records created in a row get distinct timestamps.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewClock returns a Clock starting at start and advancing one second per
// reading.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start, Step: time.Second}
}

// Now advances the clock and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.Step)
	return c.now
}

// Peek returns the current time without advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// IsolateDirs points HOME and the XDG config and data directories at a
// fresh temp dir for the duration of the test and returns that dir.
func IsolateDirs(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}
