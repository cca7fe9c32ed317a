// Package backend abstracts the terminal surface the composer draws
// on. The renderer speaks only to the Backend interface; Terminal
// implements it over tcell, and Null implements it in memory so the
// renderer is testable without a tty.
package backend

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dmoreno/cuaderno/internal/input/key"
)

// EventType identifies a host input event.
type EventType uint8

const (
	// EventNone is an event the backend could not classify.
	EventNone EventType = iota

	// EventKey is a key press.
	EventKey

	// EventMouse is a mouse press, release, motion, or wheel turn.
	EventMouse

	// EventResize reports a new surface size.
	EventResize

	// EventPaste marks the start or end of a bracketed paste. The
	// pasted content arrives as ordinary key events in between.
	EventPaste

	// EventWake is a synthetic event posted to unblock PollEvent when
	// work arrives from another goroutine.
	EventWake

	// EventQuit reports that the backend has shut down and no further
	// events will arrive.
	EventQuit
)

// MouseButton identifies the button state of a mouse event.
type MouseButton uint8

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	WheelUp
	WheelDown
)

// Event is a host input event in backend-neutral form.
type Event struct {
	Type EventType

	// Key carries the key press for EventKey.
	Key key.Event

	// MouseX, MouseY, Button, and Mods carry EventMouse state. During a
	// drag the held button stays reported on every motion event.
	MouseX int
	MouseY int
	Button MouseButton
	Mods   key.Modifier

	// Width and Height carry the new size for EventResize.
	Width  int
	Height int

	// Start distinguishes the opening paste marker from the closing
	// one for EventPaste.
	Start bool
}

// Backend is the drawing and input surface the renderer runs against.
// SetCell coordinates are zero-based screen cells; writes outside the
// surface are ignored. PollEvent blocks until an event is available
// and returns EventQuit once the backend is finished.
type Backend interface {
	Init() error
	Fini()
	Size() (width, height int)
	SetCell(x, y int, mainc rune, combc []rune, style tcell.Style)
	Clear()
	Show()
	ShowCursor(x, y int)
	HideCursor()
	PollEvent() Event
	PostInterrupt()
}

// Null is an in-memory Backend for tests. Cells are readable back,
// and events are fed in through Post.
type Null struct {
	mu        sync.Mutex
	width     int
	height    int
	cells     [][]nullCell
	cursorX   int
	cursorY   int
	cursorOn  bool
	shown     int
	events    chan Event
	closed    bool
	finiCalls int
}

type nullCell struct {
	text  string
	style tcell.Style
}

// NewNull creates a Null backend with the given surface size.
func NewNull(width, height int) *Null {
	return &Null{
		width:  width,
		height: height,
		events: make(chan Event, 64),
	}
}

// Init allocates the cell grid.
func (n *Null) Init() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alloc()
	return nil
}

func (n *Null) alloc() {
	n.cells = make([][]nullCell, n.height)
	for y := range n.cells {
		row := make([]nullCell, n.width)
		for x := range row {
			row[x] = nullCell{text: " "}
		}
		n.cells[y] = row
	}
}

// Fini closes the event stream. Pending PollEvent calls return
// EventQuit.
func (n *Null) Fini() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.closed = true
		close(n.events)
	}
	n.finiCalls++
}

// Size returns the surface size.
func (n *Null) Size() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.width, n.height
}

// SetCell writes one cell. Out-of-bounds writes are dropped.
func (n *Null) SetCell(x, y int, mainc rune, combc []rune, style tcell.Style) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if y < 0 || y >= len(n.cells) || x < 0 || x >= n.width {
		return
	}
	n.cells[y][x] = nullCell{text: string(append([]rune{mainc}, combc...)), style: style}
}

// Clear resets every cell to a blank with the default style.
func (n *Null) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alloc()
}

// Show counts completed frames; there is nothing to flush.
func (n *Null) Show() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown++
}

// ShowCursor places the visible cursor.
func (n *Null) ShowCursor(x, y int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cursorX, n.cursorY, n.cursorOn = x, y, true
}

// HideCursor hides the cursor.
func (n *Null) HideCursor() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cursorOn = false
}

// PollEvent blocks until a posted event is available.
func (n *Null) PollEvent() Event {
	ev, ok := <-n.events
	if !ok {
		return Event{Type: EventQuit}
	}
	return ev
}

// PostInterrupt posts an EventWake. Posts after Fini are dropped.
func (n *Null) PostInterrupt() {
	n.Post(Event{Type: EventWake})
}

// Post feeds an event to the next PollEvent. Posts after Fini or to a
// full queue are dropped.
func (n *Null) Post(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	select {
	case n.events <- ev:
	default:
	}
}

// Resize changes the surface size and posts the matching EventResize.
func (n *Null) Resize(width, height int) {
	n.mu.Lock()
	n.width, n.height = width, height
	n.alloc()
	n.mu.Unlock()
	n.Post(Event{Type: EventResize, Width: width, Height: height})
}

// CellAt returns the text and style written at a cell. Out-of-bounds
// reads return a blank.
func (n *Null) CellAt(x, y int) (string, tcell.Style) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if y < 0 || y >= len(n.cells) || x < 0 || x >= n.width {
		return " ", tcell.StyleDefault
	}
	c := n.cells[y][x]
	return c.text, c.style
}

// Row returns the text of one screen row with trailing blanks trimmed.
func (n *Null) Row(y int) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if y < 0 || y >= len(n.cells) {
		return ""
	}
	var b strings.Builder
	for _, c := range n.cells[y] {
		b.WriteString(c.text)
	}
	return strings.TrimRight(b.String(), " ")
}

// CursorPosition returns the cursor cell and whether it is visible.
func (n *Null) CursorPosition() (x, y int, visible bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cursorX, n.cursorY, n.cursorOn
}

// Frames returns how many times Show has been called.
func (n *Null) Frames() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.shown
}
