// Package clock abstracts wall time and one-shot scheduling so the
// day/night controller can be driven by a MockClock in tests.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies the current time and schedules callbacks.
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed. The returned
	// Timer cancels the call.
	AfterFunc(d time.Duration, f func()) Timer

	// Since returns the time elapsed since t
	Since(t time.Time) time.Duration
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop cancels the call. It returns false if the call already fired or
	// was stopped.
	Stop() bool
}

// RealClock implements Clock with the time package.
type RealClock struct{}

// NewRealClock creates a new RealClock instance
func NewRealClock() *RealClock {
	return &RealClock{}
}

// Now returns time.Now()
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc
func (c *RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Since wraps time.Since
func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock is a manually advanced Clock. Callbacks scheduled with AfterFunc
// run synchronously inside Advance or Set, in deadline order.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*mockTimer
}

type mockTimer struct {
	mu       sync.Mutex
	deadline time.Time
	f        func()
	stopped  bool
}

// NewMockClock creates a MockClock starting at start.
func NewMockClock(start time.Time) *MockClock {
	return &MockClock{current: start}
}

// Now returns the mock current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc registers f to run once the mock time reaches now+d.
func (c *MockClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &mockTimer{deadline: c.current.Add(d), f: f}
	c.timers = append(c.timers, timer)
	return timer
}

// Since returns the mock time elapsed since t
func (c *MockClock) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Sub(t)
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *MockClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, timer := range c.timers {
		timer.mu.Lock()
		if !timer.stopped {
			n++
		}
		timer.mu.Unlock()
	}
	return n
}

// Advance moves the clock forward by d. Timers are fired one at a time at
// their own deadline, so a callback that schedules another timer inside the
// advanced span also fires.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	for {
		timer := c.nextDue(target)
		if timer == nil {
			break
		}
		timer.mu.Lock()
		if timer.stopped {
			timer.mu.Unlock()
			continue
		}
		timer.stopped = true
		f := timer.f
		timer.mu.Unlock()

		// Fire outside the locks; f may call back into the clock.
		f()
	}

	c.mu.Lock()
	if target.After(c.current) {
		c.current = target
	}
	c.mu.Unlock()
}

// nextDue removes and returns the earliest live timer due at or before
// target, moving the current time to its deadline.
func (c *MockClock) nextDue(target time.Time) *mockTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.timers[:0]
	for _, timer := range c.timers {
		timer.mu.Lock()
		stopped := timer.stopped
		timer.mu.Unlock()
		if !stopped {
			live = append(live, timer)
		}
	}
	c.timers = live

	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].deadline.Before(c.timers[j].deadline)
	})

	if len(c.timers) == 0 || c.timers[0].deadline.After(target) {
		return nil
	}

	next := c.timers[0]
	c.timers = c.timers[1:]
	if next.deadline.After(c.current) {
		c.current = next.deadline
	}
	return next
}

// Set moves the clock to t, firing expired timers when moving forward.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	old := c.current
	c.mu.Unlock()

	if t.After(old) {
		c.Advance(t.Sub(old))
		return
	}

	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Stop prevents the timer from firing
func (t *mockTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}
