package testutil

import (
	"fmt"
	"sync"
	"time"
)

// StubClock is a settable clock for tests
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock creates a clock frozen at now
func NewStubClock(now time.Time) *StubClock {
	return &StubClock{now: now}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *StubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SequentialIDs yields 00000001, 00000002, ... as id suffixes
type SequentialIDs struct {
	mu   sync.Mutex
	next int
}

func (g *SequentialIDs) Suffix(n int) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	s := fmt.Sprintf("%0*x", n, g.next)
	return s[len(s)-n:]
}
