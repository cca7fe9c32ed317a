package history

import (
	"testing"
	"time"

	"github.com/dmoreno/cuaderno/internal/sched"
)

// typeOut simulates typing text one character at a time through the
// recorder, starting from the given base text.
func typeOut(r *Recorder, base, typed string) string {
	text := base
	for _, c := range typed {
		text += string(c)
		r.Record(text, len(text), len(text), false)
	}
	return text
}

func TestRecorderDebouncedCheckpoint(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	typeOut(r, "", "hola")

	if h.Len() != 1 {
		t.Errorf("Len() = %d before debounce, want 1", h.Len())
	}

	clock.Advance(800 * time.Millisecond)

	if h.Len() != 2 {
		t.Errorf("Len() = %d after debounce, want 2", h.Len())
	}

	if h.Current().Text != "hola" {
		t.Errorf("checkpoint text = %q, want 'hola'", h.Current().Text)
	}
}

func TestRecorderKeystrokesRestartQuietPeriod(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	text := ""
	for _, c := range "abcde" {
		text += string(c)
		r.Record(text, len(text), len(text), false)
		clock.Advance(500 * time.Millisecond) // below the quiet period
	}

	if h.Len() != 1 {
		t.Errorf("Len() = %d during steady typing, want 1", h.Len())
	}

	clock.Advance(800 * time.Millisecond)

	if h.Len() != 2 {
		t.Errorf("Len() = %d after typing stops, want 2", h.Len())
	}
}

func TestRecorderCharThresholdImmediate(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	// A 10-character paste must checkpoint without waiting.
	r.Record("0123456789", 10, 10, false)

	if h.Len() != 2 {
		t.Errorf("Len() = %d after 10-char burst, want 2", h.Len())
	}

	if r.Pending() {
		t.Error("threshold push should leave nothing pending")
	}
}

func TestRecorderCumulativeThreshold(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	// Nine single chars accumulate; the tenth crosses the threshold.
	text := typeOut(r, "", "123456789")
	if h.Len() != 1 {
		t.Fatalf("Len() = %d at 9 cumulative chars, want 1", h.Len())
	}

	typeOut(r, text, "0")
	if h.Len() != 2 {
		t.Errorf("Len() = %d at 10 cumulative chars, want 2", h.Len())
	}
}

func TestRecorderDeletionsCountTowardThreshold(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("0123456789abc", 13), 0)
	r := NewRecorder(h, clock)

	// Deleting ten characters is as significant as inserting them.
	r.Record("abc", 0, 0, false)

	if h.Len() != 2 {
		t.Errorf("Len() = %d after large deletion, want 2", h.Len())
	}
}

func TestRecorderFormattingImmediate(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	// Pre-state then post-state around a bold command.
	r.Record("gato", 0, 4, true)
	r.Record("**gato**", 0, 8, false)

	if h.Len() != 2 {
		t.Errorf("Len() = %d right after formatting, want 2", h.Len())
	}

	// The post state is pending; undo-style flush takes it.
	r.Flush()
	if h.Len() != 3 {
		t.Errorf("Len() = %d after flush, want 3", h.Len())
	}

	e, err := h.Undo()
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if e.Text != "gato" {
		t.Errorf("undo after formatting = %q, want 'gato' (one step)", e.Text)
	}
}

func TestRecorderFormattingCancelsPendingTimer(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	typeOut(r, "", "abc")
	r.Record("abc", 0, 3, true) // formatting checkpoint of the same text

	clock.Advance(time.Second)

	// The debounced push and the formatting push cover the same text;
	// only one entry may exist for it.
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestRecorderCancel(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	typeOut(r, "", "abc")
	r.Cancel()

	clock.Advance(time.Second)

	if h.Len() != 1 {
		t.Errorf("Len() = %d after cancel, want 1", h.Len())
	}
}

func TestRecorderNoteRestore(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock)

	typeOut(r, "", "0123456")
	r.Flush()

	// Restore to empty; the recorder must measure future deltas from
	// the restored text, and the restore itself must not checkpoint.
	r.NoteRestore("")
	clock.Advance(time.Second)
	if h.Len() != 2 {
		t.Fatalf("Len() = %d after restore, want 2", h.Len())
	}

	// Five fresh chars stay under the threshold against the restored base.
	typeOut(r, "", "abcde")
	if h.Len() != 2 {
		t.Errorf("Len() = %d after 5 chars post-restore, want 2", h.Len())
	}
}

func TestRecorderSetThresholds(t *testing.T) {
	clock := sched.NewVirtualClock()
	h := New(entry("", 0), 0)
	r := NewRecorder(h, clock, WithCharThreshold(3), WithDelay(100*time.Millisecond))

	typeOut(r, "", "abc")
	if h.Len() != 2 {
		t.Errorf("Len() = %d with threshold 3, want 2", h.Len())
	}

	r.SetThresholds(100, 50*time.Millisecond)
	typeOut(r, "abc", "de")
	clock.Advance(50 * time.Millisecond)
	if h.Len() != 3 {
		t.Errorf("Len() = %d after shortened delay, want 3", h.Len())
	}
}
