package history

import (
	"errors"
	"sync"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Entry is one checkpoint: the full composer text and the selection
// that was live when the checkpoint was taken.
type Entry struct {
	Text       string
	CaretStart int
	CaretEnd   int
}

// History is a linear stack of checkpoints with a cursor into it.
// entries[current] is the most recent checkpoint at or before the
// present state. Pushing after an undo discards the redo tail.
type History struct {
	mu         sync.Mutex
	entries    []Entry
	current    int
	maxEntries int
}

// New creates a history seeded with the initial state, so the first
// real edit can always be undone back to it.
func New(initial Entry, maxEntries int) *History {
	if maxEntries <= 1 {
		maxEntries = 100
	}
	return &History{
		entries:    []Entry{initial},
		current:    0,
		maxEntries: maxEntries,
	}
}

// Push appends a checkpoint after the current position, truncating any
// redo tail. A push whose text equals the current checkpoint's text is
// folded into it: only the stored selection is refreshed. That keeps
// flush-then-record sequences from creating duplicate steps while
// still capturing the selection that was live at push time.
func (h *History) Push(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.entries[h.current].Text == e.Text {
		h.entries[h.current].CaretStart = e.CaretStart
		h.entries[h.current].CaretEnd = e.CaretEnd
		return
	}

	h.entries = append(h.entries[:h.current+1], e)
	h.current++

	if len(h.entries) > h.maxEntries {
		excess := len(h.entries) - h.maxEntries
		h.entries = h.entries[excess:]
		h.current -= excess
	}
}

// Undo steps back one checkpoint and returns it.
// At the bottom of the stack it returns ErrNothingToUndo.
func (h *History) Undo() (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current == 0 {
		return Entry{}, ErrNothingToUndo
	}
	h.current--
	return h.entries[h.current], nil
}

// Redo steps forward one checkpoint and returns it.
// At the top of the stack it returns ErrNothingToRedo.
func (h *History) Redo() (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.current >= len(h.entries)-1 {
		return Entry{}, ErrNothingToRedo
	}
	h.current++
	return h.entries[h.current], nil
}

// CanUndo returns true if a checkpoint exists before the current one.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current > 0
}

// CanRedo returns true if a checkpoint exists after the current one.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current < len(h.entries)-1
}

// Current returns the checkpoint at the cursor.
func (h *History) Current() Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.current]
}

// Len returns the number of stored checkpoints.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Reset discards all checkpoints and reseeds with the given state.
func (h *History) Reset(initial Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = []Entry{initial}
	h.current = 0
}
