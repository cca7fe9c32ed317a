package sched

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid successive calls into a single callback
// after a quiet period. The history recorder and the auto-translate
// trigger each own one.
//
// Thread-safety: all methods are safe for concurrent use. The callback
// is never invoked concurrently with itself from the debouncer.
type Debouncer struct {
	mu       sync.Mutex
	clock    Clock
	delay    time.Duration
	timer    Timer
	pending  bool
	seq      uint64 // invalidates stale timer callbacks
	callback func()
}

// NewDebouncer creates a debouncer that invokes callback once no new
// Call has arrived for delay. A nil clock means the system clock.
func NewDebouncer(clock Clock, delay time.Duration, callback func()) *Debouncer {
	if clock == nil {
		clock = System()
	}
	return &Debouncer{
		clock:    clock,
		delay:    delay,
		callback: callback,
	}
}

// Call schedules the callback to run after the debounce delay.
// Repeated calls within the delay restart the quiet period; the
// callback fires once after the final call.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.pending && d.seq == currentSeq && d.callback != nil {
			d.pending = false
			d.mu.Unlock()
			d.callback()
			return
		}
		d.mu.Unlock()
	})
}

// Flush runs the callback immediately if a call is pending, canceling
// the scheduled timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if d.pending && d.callback != nil {
		d.pending = false
		d.mu.Unlock()
		d.callback()
		return
	}
	d.mu.Unlock()
}

// Cancel drops any pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending returns true if a call is scheduled and not yet fired.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// SetDelay changes the quiet period for subsequent calls. A pending
// call keeps its original deadline.
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.delay = delay
}

// Delay returns the current quiet period.
func (d *Debouncer) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}
