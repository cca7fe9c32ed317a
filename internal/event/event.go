// Package event carries engine notifications to the host surface.
//
// The engine publishes what changed; hosts subscribe and render. All
// delivery is synchronous and in subscription order, which keeps the
// engine's single-threaded model intact: a handler runs before the
// mutation that triggered it returns.
package event

// Kind identifies an event type.
type Kind uint8

const (
	KindBufferChanged Kind = iota
	KindSelectionChanged
	KindTranslationStarted
	KindTranslationCompleted
	KindTranslationFailed
	KindScrollChanged
	KindHistoryChanged
	KindNoteSubmitted
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBufferChanged:
		return "buffer.changed"
	case KindSelectionChanged:
		return "selection.changed"
	case KindTranslationStarted:
		return "translation.started"
	case KindTranslationCompleted:
		return "translation.completed"
	case KindTranslationFailed:
		return "translation.failed"
	case KindScrollChanged:
		return "scroll.changed"
	case KindHistoryChanged:
		return "history.changed"
	case KindNoteSubmitted:
		return "note.submitted"
	default:
		return "unknown"
	}
}

// Event is implemented by every engine notification.
type Event interface {
	Kind() Kind
}

// BufferChanged reports new text with the selection after the change.
// Hosts render from this; they never read the buffer mid-mutation.
type BufferChanged struct {
	Text     string
	SelStart int
	SelEnd   int
}

// Kind implements Event.
func (BufferChanged) Kind() Kind { return KindBufferChanged }

// SelectionChanged reports a selection move without a text change.
type SelectionChanged struct {
	Start int
	End   int
	Text  string // selected text, empty for a caret
}

// Kind implements Event.
func (SelectionChanged) Kind() Kind { return KindSelectionChanged }

// TranslationStarted reports that a service call is in flight.
type TranslationStarted struct {
	Generation uint64
	Text       string
	TargetLang string
}

// Kind implements Event.
func (TranslationStarted) Kind() Kind { return KindTranslationStarted }

// TranslationCompleted reports a finished translation. For previews the
// buffer is untouched; Merged marks destructive merges.
type TranslationCompleted struct {
	Generation uint64
	Original   string
	Translated string
	TargetLang string
	Merged     bool
}

// Kind implements Event.
func (TranslationCompleted) Kind() Kind { return KindTranslationCompleted }

// TranslationFailed reports a failed or timed-out service call.
// The failure is informational; the engine has already cleared the
// in-progress state and made no buffer change.
type TranslationFailed struct {
	Generation uint64
	TargetLang string
	Err        error
}

// Kind implements Event.
func (TranslationFailed) Kind() Kind { return KindTranslationFailed }

// ScrollChanged reports a new scroll offset and what caused it.
type ScrollChanged struct {
	Top    float64
	Source string
}

// Kind implements Event.
func (ScrollChanged) Kind() Kind { return KindScrollChanged }

// HistoryChanged reports undo/redo availability after a checkpoint,
// undo, or redo.
type HistoryChanged struct {
	CanUndo bool
	CanRedo bool
}

// Kind implements Event.
func (HistoryChanged) Kind() Kind { return KindHistoryChanged }

// NoteSubmitted reports that the composer content was sent as a note.
// The host decides where it lands; the engine has already cleared the
// composer.
type NoteSubmitted struct {
	Text string
}

// Kind implements Event.
func (NoteSubmitted) Kind() Kind { return KindNoteSubmitted }
