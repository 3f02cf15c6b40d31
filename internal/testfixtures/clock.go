package testfixtures

import (
	"sync"
	"time"
)

// Clock is a pinned time source. Deletion guards and availability caching
// compare against "now", so tests set the clock once and move it
// deliberately instead of racing the wall clock.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock pins the clock to start. A zero start pins it to ReferenceTime,
// which the canned students, trainers and sessions are dated around.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now reports the pinned instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc adapts the clock to the now-func the services take. A nil clock
// falls back to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set repins the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and reports the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}
