package testutil

import "sync"

// StepClock is a deterministic timestamp source for ledger tests.
//
// Each call to Now returns the previous value plus step, starting at start.
// Two runs of the same scenario with equal clocks stamp identical timestamps,
// so block digests are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	start uint64
	step  uint64
	next  uint64
}

// NewStepClock creates a clock whose first Now() returns start.
func NewStepClock(start, step uint64) *StepClock {
	return &StepClock{start: start, step: step, next: start}
}

// Now returns the current timestamp and advances the clock.
//
// Implements ledger.Clock.
func (c *StepClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.next
	c.next += c.step
	return now
}

// Peek returns the timestamp the next Now() will return.
func (c *StepClock) Peek() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}

// Reset rewinds the clock to its start value.
//
// Used for test reuse. After Reset(), the next call to Now() returns start.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next = c.start
}
