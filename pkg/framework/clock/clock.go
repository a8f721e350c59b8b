// Package clock abstracts wall-clock time so time-driven effects can be tested.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// Real uses the time package.
type Real struct{}

// Now returns the current time
func (Real) Now() time.Time { return time.Now() }

// Since returns the time elapsed since t
func (Real) Since(t time.Time) time.Duration { return time.Since(t) }

// Mock is a manually advanced Clock for tests.
type Mock struct {
	mu      sync.Mutex
	current time.Time
}

// NewMock creates a Mock starting at start
func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

// Now returns the mock time
func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Since returns the time elapsed since t using the mock time
func (m *Mock) Since(t time.Time) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Sub(t)
}

// Advance moves the mock time forward by d
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Set moves the mock time to t
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}
