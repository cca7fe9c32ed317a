package dispatcher

import (
	"github.com/dmoreno/cuaderno/internal/input/key"
)

// Move identifies a caret movement.
type Move uint8

const (
	MoveLeft Move = iota
	MoveRight
	MoveUp
	MoveDown
	MoveLineStart
	MoveLineEnd
	MovePageUp
	MovePageDown
)

// String returns the move name.
func (m Move) String() string {
	switch m {
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	case MoveUp:
		return "up"
	case MoveDown:
		return "down"
	case MoveLineStart:
		return "line-start"
	case MoveLineEnd:
		return "line-end"
	case MovePageUp:
		return "page-up"
	case MovePageDown:
		return "page-down"
	default:
		return "unknown"
	}
}

// Editor is the surface the dispatcher drives. The engine implements
// it; tests substitute a recorder.
type Editor interface {
	// Text returns the full buffer content.
	Text() string

	// Selection returns the current selection offsets.
	Selection() (start, end int)

	// ApplyEdit performs a computed mutation, checkpointing the
	// pre-state first when the edit is a formatting operation.
	ApplyEdit(e Edit)

	// MoveCaret performs a caret move, extending the selection when
	// extend is true, and keeps the caret visible with
	// keyboard-sourced scrolling.
	MoveCaret(m Move, extend bool)

	// Undo and Redo step through history; boundary calls are no-ops.
	Undo() error
	Redo() error

	// ClearSelection collapses the selection and drops any pending
	// translation state.
	ClearSelection()

	// SubmitNote sends the composer content as a note.
	SubmitNote() error

	// TranslateSelection translates the current selection. An empty
	// lang keeps the preferred language.
	TranslateSelection(lang string)
}

// Bindings holds the command chord specs. Zero-value fields disable
// their command.
type Bindings struct {
	Undo      string
	Redo      string
	Clear     string
	Send      string
	Bold      string
	Italic    string
	Code      string
	Translate string
}

// DefaultBindings returns the stock chord table. "Ctrl" chords also
// fire for Cmd.
func DefaultBindings() Bindings {
	return Bindings{
		Undo:      "Ctrl+Z",
		Redo:      "Ctrl+Shift+Z",
		Clear:     "Escape",
		Send:      "Ctrl+Enter",
		Bold:      "Ctrl+B",
		Italic:    "Ctrl+I",
		Code:      "Ctrl+E",
		Translate: "Ctrl+T",
	}
}

// Markdown wrap markers.
const (
	boldMarker   = "**"
	italicMarker = "*"
	codeMarker   = "`"
)

// DefaultIndent is the Tab indent unit.
const DefaultIndent = "    "

// Dispatcher maps key chords onto editor commands. Evaluation order is
// fixed: navigation, Tab indent, redo, undo, clear, send, bold,
// italic, code, translate. First match wins; unmatched events fall
// through to the direct edit path.
type Dispatcher struct {
	editor   Editor
	bindings Bindings
	indent   string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBindings replaces the chord table.
func WithBindings(b Bindings) Option {
	return func(d *Dispatcher) { d.bindings = b }
}

// WithIndent replaces the Tab indent unit.
func WithIndent(indent string) Option {
	return func(d *Dispatcher) {
		if indent != "" {
			d.indent = indent
		}
	}
}

// New creates a dispatcher driving editor.
func New(editor Editor, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		editor:   editor,
		bindings: DefaultBindings(),
		indent:   DefaultIndent,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Bindings returns the active chord table.
func (d *Dispatcher) Bindings() Bindings {
	return d.bindings
}

// HandleKey dispatches one key event. Returns true if the event was
// consumed by a command; false means the caller should treat it as a
// plain edit.
func (d *Dispatcher) HandleKey(ev key.Event) bool {
	switch {
	case ev.IsNavigation():
		d.editor.MoveCaret(moveForKey(ev.Key), ev.Modifiers.HasShift())
		return true

	case ev.IsTab():
		start, end := d.editor.Selection()
		d.editor.ApplyEdit(IndentSelection(d.editor.Text(), start, end, d.indent))
		return true

	case d.matches(ev, d.bindings.Redo):
		d.editor.Redo()
		return true

	case d.matches(ev, d.bindings.Undo):
		d.editor.Undo()
		return true

	case d.matches(ev, d.bindings.Clear):
		d.editor.ClearSelection()
		return true

	case d.matches(ev, d.bindings.Send):
		d.editor.SubmitNote()
		return true

	case d.matches(ev, d.bindings.Bold):
		d.wrap(boldMarker, boldMarker)
		return true

	case d.matches(ev, d.bindings.Italic):
		d.wrap(italicMarker, italicMarker)
		return true

	case d.matches(ev, d.bindings.Code):
		d.wrap(codeMarker, codeMarker)
		return true

	case d.matches(ev, d.bindings.Translate):
		d.editor.TranslateSelection("")
		return true
	}

	return false
}

func (d *Dispatcher) matches(ev key.Event, spec string) bool {
	return spec != "" && ev.Matches(spec)
}

func (d *Dispatcher) wrap(prefix, suffix string) {
	start, end := d.editor.Selection()
	d.editor.ApplyEdit(WrapSelection(d.editor.Text(), start, end, prefix, suffix))
}

func moveForKey(k key.Key) Move {
	switch k {
	case key.KeyLeft:
		return MoveLeft
	case key.KeyRight:
		return MoveRight
	case key.KeyUp:
		return MoveUp
	case key.KeyDown:
		return MoveDown
	case key.KeyHome:
		return MoveLineStart
	case key.KeyEnd:
		return MoveLineEnd
	case key.KeyPageUp:
		return MovePageUp
	default:
		return MovePageDown
	}
}
