// Package renderer draws the composer on a terminal and feeds input
// back into the engine.
//
// One goroutine owns the whole loop: poll an event, apply it to the
// engine, drain deferred work with Tick, repaint. Work that finishes
// on other goroutines, like debounce timers and translation calls,
// wakes the loop with a posted interrupt instead of touching the
// screen directly.
//
// The screen itself sits behind backend.Backend, so everything above
// it runs unchanged against the in-memory test double.
package renderer
