package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmoreno/cuaderno/internal/dispatcher"
	"github.com/dmoreno/cuaderno/internal/engine/annotate"
	"github.com/dmoreno/cuaderno/internal/engine/buffer"
	"github.com/dmoreno/cuaderno/internal/engine/cursor"
	"github.com/dmoreno/cuaderno/internal/engine/history"
	"github.com/dmoreno/cuaderno/internal/engine/viewport"
	"github.com/dmoreno/cuaderno/internal/engine/visual"
	"github.com/dmoreno/cuaderno/internal/event"
	"github.com/dmoreno/cuaderno/internal/input/key"
	"github.com/dmoreno/cuaderno/internal/metrics"
	"github.com/dmoreno/cuaderno/internal/sched"
)

// Re-export commonly used types for convenience.
type (
	// ByteOffset is a byte position in the buffer.
	ByteOffset = buffer.ByteOffset

	// Point represents a line/column position.
	Point = buffer.Point

	// Selection represents the caret and its optional extent.
	Selection = cursor.Selection

	// ScrollSource identifies what caused a scroll change.
	ScrollSource = viewport.ScrollSource
)

// Re-exported scroll sources.
const (
	SourceUser         = viewport.SourceUser
	SourceWheel        = viewport.SourceWheel
	SourceKeyboard     = viewport.SourceKeyboard
	SourceProgrammatic = viewport.SourceProgrammatic
)

// CaretInfo is the derived position of the caret. It is recomputed
// from the buffer and selection on demand, never stored as ground
// truth.
type CaretInfo struct {
	Offset      int // byte offset in the buffer
	LogicalLine int // 0-based hard line
	Column      int // byte column within the line
	VisualLine  int // 1-based wrapped line
}

// Engine is the composer's text editing core. It owns the buffer, the
// selection, undo history, scroll state, and the selection translation
// session, and exposes the command surface the host surface drives.
//
// Mutations are synchronous and serialized under one mutex. Work that
// depends on post-event selection state is posted to the deferred
// queue and applied when the host calls Tick.
type Engine struct {
	mu sync.RWMutex

	buf  *buffer.Buffer
	sel  cursor.Selection
	hist *history.History
	rec  *history.Recorder
	calc *visual.Calculator
	vp   *viewport.Controller
	ann  *annotate.Controller
	disp *dispatcher.Dispatcher

	bus   *event.Bus
	queue *sched.Queue

	viewportWidth float64

	// Construction knobs, consumed by New.
	initContent   string
	clock         sched.Clock
	translator    annotate.Service
	provider      metrics.Provider
	historyDepth  int
	coalesceChars int
	coalesceDelay time.Duration
	autoDelay     time.Duration
	callTimeout   time.Duration
	language      string
	bindings      *dispatcher.Bindings
	indent        string
	lineHeight    float64
	height        float64
	runner        func(func())
}

// errorTranslator is the default translation service. Every call
// fails, which surfaces as a TranslationFailed event rather than a
// crash.
type errorTranslator struct{}

func (errorTranslator) Translate(_ context.Context, _, _ string) (string, error) {
	return "", ErrNoTranslator
}

// New creates an Engine with the given options.
func New(opts ...Option) *Engine {
	e := &Engine{
		clock:        sched.System(),
		historyDepth: DefaultHistoryDepth,
		indent:       strings.Repeat(" ", DefaultIndentWidth),
		lineHeight:   DefaultLineHeight,
		height:       DefaultHeight,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.bus == nil {
		e.bus = event.NewBus()
	}
	if e.queue == nil {
		e.queue = sched.NewQueue()
	}

	e.buf = buffer.FromString(e.initContent)
	e.sel = cursor.Caret(e.buf.Len())

	initial := history.Entry{Text: e.buf.Text(), CaretStart: e.sel.Head, CaretEnd: e.sel.Head}
	e.hist = history.New(initial, e.historyDepth)
	recOpts := []history.RecorderOption{}
	if e.coalesceChars > 0 {
		recOpts = append(recOpts, history.WithCharThreshold(e.coalesceChars))
	}
	if e.coalesceDelay > 0 {
		recOpts = append(recOpts, history.WithDelay(e.coalesceDelay))
	}
	e.rec = history.NewRecorder(e.hist, e.clock, recOpts...)

	e.calc = visual.New(e.provider)
	e.vp = viewport.NewController(e.lineHeight, e.height)

	annOpts := []annotate.Option{
		annotate.WithClock(e.clock),
		annotate.WithBus(e.bus),
		annotate.WithApplyFunc(func(fn func()) { e.queue.Post(fn) }),
	}
	if e.autoDelay > 0 {
		annOpts = append(annOpts, annotate.WithDebounceDelay(e.autoDelay))
	}
	if e.callTimeout > 0 {
		annOpts = append(annOpts, annotate.WithCallTimeout(e.callTimeout))
	}
	if e.language != "" {
		annOpts = append(annOpts, annotate.WithLanguage(e.language))
	}
	if e.runner != nil {
		annOpts = append(annOpts, annotate.WithRunner(e.runner))
	}
	if e.translator == nil {
		e.translator = errorTranslator{}
	}
	e.ann = annotate.NewController(e.translator, annOpts...)
	e.ann.SetMergeFunc(e.applyMerge)

	dispOpts := []dispatcher.Option{dispatcher.WithIndent(e.indent)}
	if e.bindings != nil {
		dispOpts = append(dispOpts, dispatcher.WithBindings(*e.bindings))
	}
	e.disp = dispatcher.New(e, dispOpts...)

	return e
}

// Bus returns the event bus the engine publishes on.
func (e *Engine) Bus() *event.Bus {
	return e.bus
}

// Close cancels pending timers and in-flight translation calls.
func (e *Engine) Close() {
	e.ann.Close()
	e.rec.Cancel()
	e.queue.Clear()
}

// Command surface

// HandleKey processes one key event. Chord commands run through the
// dispatcher in priority order; unconsumed events take the direct edit
// path (character insert, Enter, Backspace, Delete). Returns true if
// the event did anything.
func (e *Engine) HandleKey(ev key.Event) bool {
	e.mu.RLock()
	d := e.disp
	e.mu.RUnlock()

	if d.HandleKey(ev) {
		return true
	}

	switch {
	case ev.Key == key.KeyEnter && !hardModified(ev):
		e.insertText("\n")
		return true
	case ev.Key == key.KeySpace && !hardModified(ev):
		e.insertText(" ")
		return true
	case ev.Key == key.KeyBackspace && !hardModified(ev):
		e.deleteBackward()
		return true
	case ev.Key == key.KeyDelete && !hardModified(ev):
		e.deleteForward()
		return true
	case ev.IsChar() && !ev.IsModified():
		e.insertText(string(ev.Rune))
		return true
	}
	return false
}

// hardModified reports whether a chord-forming modifier is held.
// Shift alone never blocks the direct edit path.
func hardModified(ev key.Event) bool {
	return ev.Modifiers.Normalize()&(key.ModCtrl|key.ModAlt) != 0
}

// HandleSelectionChange records a selection reported by the host.
// Bounds clamp to the buffer; the translation session re-tracks the
// new selection and caret visibility is re-ensured on the next tick.
func (e *Engine) HandleSelectionChange(start, end int) {
	e.mu.Lock()
	start, end = e.buf.ClampRange(start, end)
	sel := cursor.New(start, end)
	if sel.Equals(e.sel) {
		e.mu.Unlock()
		return
	}
	hadSelection := !e.sel.IsEmpty()
	e.sel = sel
	selText := e.buf.TextRange(start, end)
	e.mu.Unlock()

	if hadSelection || !sel.IsEmpty() {
		e.ann.OnSelectionChanged(start, end, selText)
	}
	e.bus.Publish(event.SelectionChanged{Start: start, End: end, Text: selText})
	e.queueReveal(false, viewport.SourceProgrammatic)
}

// SetSelection programmatically moves the selection.
func (e *Engine) SetSelection(start, end int) {
	e.HandleSelectionChange(start, end)
}

// Selection returns the current selection bounds, ordered.
func (e *Engine) Selection() (start, end int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r := e.sel.Range()
	return r.Start, r.End
}

// Text returns the full composer content.
func (e *Engine) Text() string {
	return e.buf.Text()
}

// SetText replaces the composer content, puts the caret at the end,
// and reseeds history so the load is not itself undoable.
func (e *Engine) SetText(s string) {
	e.mu.Lock()
	e.buf.SetText(s)
	text := e.buf.Text()
	caret := e.buf.Len()
	e.sel = cursor.Caret(caret)
	e.rec.NoteRestore(text)
	e.hist.Reset(history.Entry{Text: text, CaretStart: caret, CaretEnd: caret})
	e.mu.Unlock()

	e.ann.ClearSelection()
	e.bus.Publish(event.BufferChanged{Text: text, SelStart: caret, SelEnd: caret})
	e.bus.Publish(event.HistoryChanged{CanUndo: false, CanRedo: false})
	e.queueReveal(true, viewport.SourceProgrammatic)
}

// HandleResize records new surface geometry: the wrap width and the
// viewport height, in scroll units. Caret visibility is re-ensured
// under the new layout.
func (e *Engine) HandleResize(width, height float64) {
	e.mu.Lock()
	if width >= 0 {
		e.viewportWidth = width
	}
	e.mu.Unlock()
	if height > 0 {
		e.vp.Resize(height)
	}
	e.queueReveal(false, viewport.SourceProgrammatic)
}

// Undo steps back one checkpoint, restoring text and selection.
// Pending typed state is checkpointed first so it survives the round
// trip. At the bottom of the stack this is a sentinel-erroring no-op.
func (e *Engine) Undo() error {
	e.rec.Flush()

	e.mu.Lock()
	entry, err := e.hist.Undo()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	text, sel := e.restoreLocked(entry)
	e.mu.Unlock()

	e.finishRestore(text, sel)
	return nil
}

// Redo steps forward one checkpoint. Pending typed state is flushed
// first; typing after an undo therefore truncates the redo tail and
// leaves nothing to redo, by design of the history stack.
func (e *Engine) Redo() error {
	e.rec.Flush()

	e.mu.Lock()
	entry, err := e.hist.Redo()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	text, sel := e.restoreLocked(entry)
	e.mu.Unlock()

	e.finishRestore(text, sel)
	return nil
}

// restoreLocked applies a history entry to the buffer and selection.
// Callers must hold the write lock.
func (e *Engine) restoreLocked(entry history.Entry) (string, cursor.Selection) {
	e.buf.SetText(entry.Text)
	sel := cursor.New(entry.CaretStart, entry.CaretEnd).Clamp(e.buf.Len())
	e.sel = sel
	e.rec.NoteRestore(entry.Text)
	return e.buf.Text(), sel
}

// finishRestore publishes the post-restore state and forces the caret
// visible. Restores always force the scroll: the noise threshold must
// not swallow a jump back to earlier text.
func (e *Engine) finishRestore(text string, sel cursor.Selection) {
	r := sel.Range()
	selText := ""
	if !r.IsEmpty() {
		selText = text[r.Start:r.End]
	}
	e.ann.OnSelectionChanged(r.Start, r.End, selText)
	e.bus.Publish(event.BufferChanged{Text: text, SelStart: r.Start, SelEnd: r.End})
	e.bus.Publish(event.HistoryChanged{CanUndo: e.CanUndo(), CanRedo: e.CanRedo()})
	e.queueReveal(true, viewport.SourceProgrammatic)
}

// CanUndo reports whether undo would change anything. Pending typed
// state counts: it becomes a checkpoint the moment undo is invoked.
func (e *Engine) CanUndo() bool {
	return e.hist.CanUndo() || e.rec.Pending()
}

// CanRedo reports whether a redo checkpoint is available.
func (e *Engine) CanRedo() bool {
	return e.hist.CanRedo() && !e.rec.Pending()
}

// TranslateSelection translates the current selection now. A non-empty
// lang becomes the preferred language for this and future selections.
func (e *Engine) TranslateSelection(lang string) {
	e.ann.TranslateSelection(lang)
}

// ConfirmTranslation commits a ready preview into the buffer as an
// annotation pair. Returns false if no preview is ready.
func (e *Engine) ConfirmTranslation() bool {
	return e.ann.ConfirmMerge()
}

// TranslationState returns a snapshot of the selection translation
// session.
func (e *Engine) TranslationState() annotate.State {
	return e.ann.State()
}

// SetPreferredLanguage persists the translation target language.
// Existing annotations are not re-translated.
func (e *Engine) SetPreferredLanguage(lang string) {
	e.ann.SetPreferredLanguage(lang)
}

// PreferredLanguage returns the current translation target language.
func (e *Engine) PreferredLanguage() string {
	return e.ann.PreferredLanguage()
}

// ClearSelection collapses the selection to the caret and drops any
// pending translation state.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	hadSelection := !e.sel.IsEmpty()
	head := e.buf.Clamp(e.sel.Head)
	e.sel = cursor.Caret(head)
	e.mu.Unlock()

	e.ann.ClearSelection()
	if hadSelection {
		e.bus.Publish(event.SelectionChanged{Start: head, End: head})
	}
}

// SubmitNote sends the composer content as a note and clears the
// composer. Whitespace-only content is rejected with ErrEmptyNote.
func (e *Engine) SubmitNote() error {
	e.mu.Lock()
	text := e.buf.Text()
	if strings.TrimSpace(text) == "" {
		e.mu.Unlock()
		return ErrEmptyNote
	}
	e.buf.SetText("")
	e.sel = cursor.Caret(0)
	e.rec.NoteRestore("")
	e.hist.Reset(history.Entry{})
	e.mu.Unlock()

	e.ann.ClearSelection()
	e.bus.Publish(event.NoteSubmitted{Text: text})
	e.bus.Publish(event.BufferChanged{Text: ""})
	e.bus.Publish(event.HistoryChanged{})
	e.queueReveal(true, viewport.SourceProgrammatic)
	return nil
}

// Scroll surface

// ObserveScroll records a scroll position reported by the host. Echoes
// of the engine's own scrolls are absorbed; user-driven changes are
// republished with their source.
func (e *Engine) ObserveScroll(top float64, source viewport.ScrollSource) {
	if top < 0 {
		top = 0
	}
	if e.vp.ObserveScroll(top, source) {
		e.bus.Publish(event.ScrollChanged{Top: top, Source: source.String()})
	}
}

// ScrollTop returns the current scroll offset in scroll units.
func (e *Engine) ScrollTop() float64 {
	return e.vp.ScrollTop()
}

// Tick runs the per-event housekeeping. The host calls it once at the
// end of each input event tick. It first closes the self-scrolling
// window left open by the previous tick (an unechoed scroll), then
// drains deferred work, which may open a new one for the echo that
// arrives before the next tick.
func (e *Engine) Tick() {
	e.vp.EndTick()
	e.queue.Drain()
}

// Derived state

// CaretInfo returns the caret's derived position under the current
// wrap width.
func (e *Engine) CaretInfo() CaretInfo {
	e.mu.RLock()
	head := e.buf.Clamp(e.sel.Head)
	width := e.viewportWidth
	e.mu.RUnlock()

	text := e.buf.Text()
	p := e.buf.OffsetToPoint(head)
	return CaretInfo{
		Offset:      head,
		LogicalLine: p.Line,
		Column:      p.Column,
		VisualLine:  e.calc.LineOf(text, head, width),
	}
}

// VisualLineCount returns the total visual lines under the current
// wrap width.
func (e *Engine) VisualLineCount() int {
	e.mu.RLock()
	width := e.viewportWidth
	e.mu.RUnlock()
	return e.calc.Total(e.buf.Text(), width)
}

// Runtime settings

// SetCoalescing adjusts the history coalescing thresholds on a running
// engine. Non-positive values leave the current setting unchanged.
func (e *Engine) SetCoalescing(chars int, delay time.Duration) {
	e.rec.SetThresholds(chars, delay)
}

// SetAutoTranslateDelay adjusts the auto-translate quiet period.
func (e *Engine) SetAutoTranslateDelay(d time.Duration) {
	e.ann.SetDebounceDelay(d)
}

// SetIndentWidth adjusts how many spaces a Tab indent inserts.
func (e *Engine) SetIndentWidth(n int) {
	if n <= 0 {
		return
	}
	indent := strings.Repeat(" ", n)
	e.mu.Lock()
	e.indent = indent
	opts := []dispatcher.Option{dispatcher.WithIndent(indent)}
	if e.bindings != nil {
		opts = append(opts, dispatcher.WithBindings(*e.bindings))
	}
	e.disp = dispatcher.New(e, opts...)
	e.mu.Unlock()
}

// SetMetrics swaps the width measurement provider.
func (e *Engine) SetMetrics(p metrics.Provider) {
	e.calc.SetProvider(p)
}

// Direct edit path

// insertText replaces the selection with s and collapses the caret
// after it.
func (e *Engine) insertText(s string) {
	e.mu.Lock()
	hadSelection := !e.sel.IsEmpty()
	r := e.sel.Range()
	endPos, err := e.buf.Replace(r.Start, r.End, s)
	if err != nil {
		e.mu.Unlock()
		return
	}
	e.sel = cursor.Caret(endPos)
	text := e.buf.Text()
	e.rec.Record(text, endPos, endPos, false)
	e.mu.Unlock()

	e.afterEdit(hadSelection, text, cursor.Caret(endPos))
}

// deleteBackward removes the selection, or the grapheme cluster before
// the caret.
func (e *Engine) deleteBackward() {
	e.mu.Lock()
	hadSelection := !e.sel.IsEmpty()
	r := e.sel.Range()
	if r.IsEmpty() {
		r.Start = e.buf.PrevBoundary(r.End)
		if r.Start == r.End {
			e.mu.Unlock()
			return
		}
	}
	if err := e.buf.Delete(r.Start, r.End); err != nil {
		e.mu.Unlock()
		return
	}
	e.sel = cursor.Caret(r.Start)
	text := e.buf.Text()
	e.rec.Record(text, r.Start, r.Start, false)
	e.mu.Unlock()

	e.afterEdit(hadSelection, text, cursor.Caret(r.Start))
}

// deleteForward removes the selection, or the grapheme cluster after
// the caret.
func (e *Engine) deleteForward() {
	e.mu.Lock()
	hadSelection := !e.sel.IsEmpty()
	r := e.sel.Range()
	if r.IsEmpty() {
		r.End = e.buf.NextBoundary(r.Start)
		if r.Start == r.End {
			e.mu.Unlock()
			return
		}
	}
	if err := e.buf.Delete(r.Start, r.End); err != nil {
		e.mu.Unlock()
		return
	}
	e.sel = cursor.Caret(r.Start)
	text := e.buf.Text()
	e.rec.Record(text, r.Start, r.Start, false)
	e.mu.Unlock()

	e.afterEdit(hadSelection, text, cursor.Caret(r.Start))
}

// afterEdit runs the shared post-mutation path: translation session
// sync, buffer event, deferred caret reveal.
func (e *Engine) afterEdit(hadSelection bool, text string, sel cursor.Selection) {
	r := sel.Range()
	selText := ""
	if !r.IsEmpty() {
		selText = text[r.Start:r.End]
	}
	if hadSelection || !r.IsEmpty() {
		e.ann.OnSelectionChanged(r.Start, r.End, selText)
	}
	e.bus.Publish(event.BufferChanged{Text: text, SelStart: r.Start, SelEnd: r.End})
	e.queueReveal(false, viewport.SourceProgrammatic)
}

// Dispatcher surface

// ApplyEdit performs a computed mutation from the dispatcher. A
// formatting edit checkpoints the pre-state first, so wrap and indent
// commands are exactly one undo step.
func (e *Engine) ApplyEdit(ed dispatcher.Edit) {
	e.mu.Lock()
	hadSelection := !e.sel.IsEmpty()
	if ed.Formatting {
		r := e.sel.Range()
		e.rec.Record(e.buf.Text(), r.Start, r.End, true)
	}
	start, end := e.buf.ClampRange(ed.Start, ed.End)
	if _, err := e.buf.Replace(start, end, ed.Text); err != nil {
		e.mu.Unlock()
		return
	}
	sel := cursor.New(ed.SelStart, ed.SelEnd).Clamp(e.buf.Len())
	e.sel = sel
	text := e.buf.Text()
	r := sel.Range()
	e.rec.Record(text, r.Start, r.End, ed.Formatting)
	e.mu.Unlock()

	e.afterEdit(hadSelection, text, sel)
	if ed.Formatting {
		e.bus.Publish(event.HistoryChanged{CanUndo: e.CanUndo(), CanRedo: e.CanRedo()})
	}
}

// MoveCaret performs a caret move from the dispatcher. Plain moves
// collapse any selection toward the move direction; extend keeps the
// anchor. The caret is revealed with keyboard-sourced scrolling.
func (e *Engine) MoveCaret(m dispatcher.Move, extend bool) {
	e.mu.Lock()
	hadSelection := !e.sel.IsEmpty()
	target := e.moveTargetLocked(m, extend)
	if extend {
		e.sel = e.sel.Extend(target)
	} else {
		e.sel = cursor.Caret(target)
	}
	sel := e.sel
	text := e.buf.Text()
	e.mu.Unlock()

	r := sel.Range()
	selText := ""
	if !r.IsEmpty() {
		selText = text[r.Start:r.End]
	}
	if hadSelection || !r.IsEmpty() {
		e.ann.OnSelectionChanged(r.Start, r.End, selText)
	}
	e.bus.Publish(event.SelectionChanged{Start: r.Start, End: r.End, Text: selText})
	e.queueReveal(false, viewport.SourceKeyboard)
}

// moveTargetLocked computes the destination offset of a caret move.
// Callers must hold the write lock.
func (e *Engine) moveTargetLocked(m dispatcher.Move, extend bool) int {
	head := e.buf.Clamp(e.sel.Head)

	switch m {
	case dispatcher.MoveLeft:
		if !extend && !e.sel.IsEmpty() {
			return e.sel.Start()
		}
		return e.buf.PrevBoundary(head)

	case dispatcher.MoveRight:
		if !extend && !e.sel.IsEmpty() {
			return e.sel.End()
		}
		return e.buf.NextBoundary(head)

	case dispatcher.MoveUp:
		return e.verticalTargetLocked(head, -1)

	case dispatcher.MoveDown:
		return e.verticalTargetLocked(head, 1)

	case dispatcher.MoveLineStart:
		return e.buf.LineStartOffset(e.buf.OffsetToPoint(head).Line)

	case dispatcher.MoveLineEnd:
		return e.buf.LineEndOffset(e.buf.OffsetToPoint(head).Line)

	case dispatcher.MovePageUp:
		return e.verticalTargetLocked(head, -e.vp.VisibleLines())

	case dispatcher.MovePageDown:
		return e.verticalTargetLocked(head, e.vp.VisibleLines())
	}
	return head
}

// verticalTargetLocked moves the caret delta hard lines, holding the
// byte column and snapping back off multibyte boundaries. Moves past
// either end land on the buffer boundary.
func (e *Engine) verticalTargetLocked(head, delta int) int {
	p := e.buf.OffsetToPoint(head)
	line := p.Line + delta
	if line < 0 {
		return 0
	}
	if line >= e.buf.LineCount() {
		return e.buf.Len()
	}
	off := e.buf.PointToOffset(buffer.Point{Line: line, Column: p.Column})
	return e.buf.SnapToRuneStart(off)
}

// Translation merge path

// applyMerge is the annotate controller's buffer hook: replace
// [start, end) with the merged annotation text and move the caret to
// its end. The merge is recorded as a formatting checkpoint so it is
// exactly one undo step.
func (e *Engine) applyMerge(start, end int, replacement string) {
	e.mu.Lock()
	r := e.sel.Range()
	e.rec.Record(e.buf.Text(), r.Start, r.End, true)

	start, end = e.buf.ClampRange(start, end)
	endPos, err := e.buf.Replace(start, end, replacement)
	if err != nil {
		e.mu.Unlock()
		return
	}
	e.sel = cursor.Caret(endPos)
	text := e.buf.Text()
	e.rec.Record(text, endPos, endPos, true)
	e.mu.Unlock()

	e.bus.Publish(event.BufferChanged{Text: text, SelStart: endPos, SelEnd: endPos})
	e.bus.Publish(event.HistoryChanged{CanUndo: e.CanUndo(), CanRedo: e.CanRedo()})
	e.queueReveal(false, viewport.SourceProgrammatic)
}

// Deferred scroll

// queueReveal posts a caret visibility pass for the next tick.
// Selection state is only authoritative after the current input event,
// so the visual line is computed at drain time, not now.
func (e *Engine) queueReveal(force bool, src viewport.ScrollSource) {
	e.queue.Post(func() {
		e.mu.RLock()
		head := e.buf.Clamp(e.sel.Head)
		width := e.viewportWidth
		e.mu.RUnlock()

		text := e.buf.Text()
		line := e.calc.LineOf(text, head, width)
		total := e.calc.Total(text, width)
		if top, changed := e.vp.EnsureVisible(line, total, force); changed {
			e.bus.Publish(event.ScrollChanged{Top: top, Source: src.String()})
		}
	})
}
