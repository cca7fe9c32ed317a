// Package sched provides the timing primitives the engine defers work
// with: a clock abstraction, a cancelable single-shot debouncer, and a
// run-after-current-event task queue. Tests drive everything through a
// virtual clock so no test ever sleeps.
package sched

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented
	// the callback from firing.
	Stop() bool
}

// Clock creates timers and reports the current time. Production code
// uses System; tests use a VirtualClock advanced by hand.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System returns the real-time clock.
func System() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
