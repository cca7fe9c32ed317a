package history

import (
	"sync"
	"time"

	"github.com/dmoreno/cuaderno/internal/sched"
)

// Default coalescing thresholds. Both are tuning values, overridable
// through options and at runtime via SetThresholds.
const (
	DefaultCharThreshold = 10
	DefaultDelay         = 800 * time.Millisecond
)

// Recorder decides when an edit stream deserves a checkpoint. Without
// it every keystroke would be its own undo step. Rules, in priority
// order:
//
//  1. Formatting pushes checkpoint immediately and unconditionally.
//  2. Once the cumulative character delta since the last checkpoint
//     reaches the threshold, checkpoint immediately.
//  3. Otherwise checkpoint after a quiet period; further edits restart
//     the period.
type Recorder struct {
	mu            sync.Mutex
	hist          *History
	deb           *sched.Debouncer
	charThreshold int
	accumulated   int
	prevLen       int
	pending       Entry
	hasPending    bool
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithCharThreshold overrides the cumulative character delta that
// forces an immediate checkpoint.
func WithCharThreshold(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.charThreshold = n
		}
	}
}

// WithDelay overrides the debounce quiet period.
func WithDelay(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.deb.SetDelay(d)
		}
	}
}

// NewRecorder creates a recorder feeding hist. The clock drives the
// debounce timer; tests pass a virtual clock.
func NewRecorder(hist *History, clock sched.Clock, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		hist:          hist,
		charThreshold: DefaultCharThreshold,
		prevLen:       len(hist.Current().Text),
	}
	r.deb = sched.NewDebouncer(clock, DefaultDelay, r.flushPending)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record observes the state after an edit and applies the coalescing
// rules. isFormatting marks the state bracketing a formatting command;
// such states are checkpointed immediately so the command is exactly
// one undo step.
func (r *Recorder) Record(text string, caretStart, caretEnd int, isFormatting bool) {
	r.mu.Lock()

	entry := Entry{Text: text, CaretStart: caretStart, CaretEnd: caretEnd}
	delta := len(text) - r.prevLen
	if delta < 0 {
		delta = -delta
	}
	r.prevLen = len(text)

	if isFormatting {
		r.hasPending = false
		r.accumulated = 0
		r.mu.Unlock()
		r.deb.Cancel()
		r.hist.Push(entry)
		return
	}

	r.accumulated += delta
	if r.accumulated >= r.charThreshold {
		r.hasPending = false
		r.accumulated = 0
		r.mu.Unlock()
		r.deb.Cancel()
		r.hist.Push(entry)
		return
	}

	r.pending = entry
	r.hasPending = true
	r.mu.Unlock()
	r.deb.Call()
}

// flushPending is the debounce callback.
func (r *Recorder) flushPending() {
	r.mu.Lock()
	if !r.hasPending {
		r.mu.Unlock()
		return
	}
	entry := r.pending
	r.hasPending = false
	r.accumulated = 0
	r.mu.Unlock()

	r.hist.Push(entry)
}

// Flush checkpoints any pending state right now. Undo and redo call
// this first so freshly typed text survives the round trip.
func (r *Recorder) Flush() {
	r.deb.Flush()
}

// Cancel drops pending state without a checkpoint, for teardown and
// for restores that must not record themselves.
func (r *Recorder) Cancel() {
	r.deb.Cancel()
	r.mu.Lock()
	r.hasPending = false
	r.accumulated = 0
	r.mu.Unlock()
}

// NoteRestore realigns the recorder after text is restored from a
// checkpoint, so the next edit's delta is measured against the
// restored text rather than the pre-restore one.
func (r *Recorder) NoteRestore(text string) {
	r.Cancel()
	r.mu.Lock()
	r.prevLen = len(text)
	r.mu.Unlock()
}

// Pending returns true if a checkpoint is scheduled but not yet taken.
func (r *Recorder) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasPending
}

// SetThresholds adjusts the coalescing parameters at runtime.
// Non-positive values leave the corresponding threshold unchanged.
func (r *Recorder) SetThresholds(chars int, delay time.Duration) {
	r.mu.Lock()
	if chars > 0 {
		r.charThreshold = chars
	}
	r.mu.Unlock()
	if delay > 0 {
		r.deb.SetDelay(delay)
	}
}
