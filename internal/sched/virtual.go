package sched

import (
	"sort"
	"sync"
	"time"
)

// VirtualClock is a Clock whose time only moves when Advance is called.
// Timers fire synchronously inside Advance, in deadline order, on the
// calling goroutine. Callbacks may schedule new timers; those fire too
// if their deadline falls within the same advance.
type VirtualClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers []*virtualTimer
}

type virtualTimer struct {
	clock    *VirtualClock
	id       int
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

// NewVirtualClock creates a virtual clock starting at an arbitrary
// fixed instant.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{now: time.Unix(1700000000, 0)}
}

// Now returns the virtual current time.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run when the clock advances past d.
func (c *VirtualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.compactLocked()
	c.nextID++
	t := &virtualTimer{
		clock:    c,
		id:       c.nextID,
		deadline: c.now.Add(d),
		fn:       f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Stop cancels the timer if it has not fired yet.
func (t *virtualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing due timers in deadline
// order. Ties fire in creation order.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		t := c.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	c.mu.Lock()
	c.now = target
	c.mu.Unlock()
}

// popDue removes and returns the earliest unfired timer with a deadline
// at or before target, bumping the clock to that deadline. Returns nil
// when nothing further is due.
func (c *VirtualClock) popDue(target time.Time) *virtualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	c.timers = live

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].deadline.Equal(c.timers[j].deadline) {
			return c.timers[i].id < c.timers[j].id
		}
		return c.timers[i].deadline.Before(c.timers[j].deadline)
	})

	for _, t := range c.timers {
		if t.deadline.After(target) {
			break
		}
		t.fired = true
		if t.deadline.After(c.now) {
			c.now = t.deadline
		}
		return t
	}
	return nil
}

// compactLocked drops stopped and fired timers once they outnumber the
// live ones. Debounce-heavy callers reschedule constantly and would
// otherwise accumulate dead entries between advances.
func (c *VirtualClock) compactLocked() {
	if len(c.timers) < 32 {
		return
	}
	live := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			live++
		}
	}
	if live*2 > len(c.timers) {
		return
	}

	kept := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(c.timers); i++ {
		c.timers[i] = nil
	}
	c.timers = kept
}

// PendingTimers returns how many timers are scheduled and unfired.
func (c *VirtualClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
