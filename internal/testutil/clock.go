// Package testutil holds in-memory stand-ins for the Postgres, MongoDB, S3 and
// analysis dependencies.
package testutil

import (
	"sync"
	"time"
)

// Clock is a manually advanced clock
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts a clock at t
func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
