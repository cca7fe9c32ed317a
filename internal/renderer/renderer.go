package renderer

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dmoreno/cuaderno/internal/engine"
	"github.com/dmoreno/cuaderno/internal/engine/annotate"
	"github.com/dmoreno/cuaderno/internal/event"
	"github.com/dmoreno/cuaderno/internal/input/key"
	"github.com/dmoreno/cuaderno/internal/renderer/backend"
)

// Renderer runs the composer's event loop against a Backend. It owns
// the screen for the lifetime of Run; everything it shows is derived
// from engine state on each repaint.
type Renderer struct {
	be  backend.Backend
	eng *engine.Engine

	theme      Theme
	showStatus bool
	wheelStep  int

	mu       sync.Mutex
	flash    string
	flashErr bool

	wakePending atomic.Bool
	stopReq     atomic.Bool

	subs []event.Subscription

	// Event-loop state, touched only from Run's goroutine.
	dragging   bool
	dragAnchor int
	pasting    bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithTheme replaces the default dark theme.
func WithTheme(t Theme) Option {
	return func(r *Renderer) { r.theme = t }
}

// WithStatusBar toggles the status line. Without it the composer gets
// the full surface height.
func WithStatusBar(show bool) Option {
	return func(r *Renderer) { r.showStatus = show }
}

// WithWheelStep sets how many rows one wheel turn scrolls.
func WithWheelStep(rows int) Option {
	return func(r *Renderer) {
		if rows > 0 {
			r.wheelStep = rows
		}
	}
}

// New creates a Renderer for eng on be. It subscribes to the engine
// bus so timer-driven changes repaint without waiting for input; call
// Close when done with it.
func New(be backend.Backend, eng *engine.Engine, opts ...Option) *Renderer {
	r := &Renderer{
		be:         be,
		eng:        eng,
		theme:      NewTheme("dark", true),
		showStatus: true,
		wheelStep:  3,
	}
	for _, opt := range opts {
		opt(r)
	}

	bus := eng.Bus()
	r.subs = append(r.subs,
		bus.SubscribeKind(event.KindTranslationStarted, func(event.Event) { r.Wake() }),
		bus.SubscribeKind(event.KindTranslationFailed, func(ev event.Event) {
			msg := "translation failed"
			if f, ok := ev.(event.TranslationFailed); ok && f.Err != nil {
				msg += ": " + f.Err.Error()
			}
			r.FlashError(msg)
		}),
		bus.SubscribeKind(event.KindHistoryChanged, func(event.Event) { r.Wake() }),
	)
	return r
}

// Close drops the bus subscriptions. The renderer must not Run again
// afterwards.
func (r *Renderer) Close() {
	bus := r.eng.Bus()
	for _, s := range r.subs {
		bus.Unsubscribe(s)
	}
	r.subs = nil
}

// Run initializes the backend and drives the event loop until Ctrl+Q,
// Stop, or backend shutdown. It blocks; callers run it as the main
// goroutine's last act.
func (r *Renderer) Run() error {
	if err := r.be.Init(); err != nil {
		return err
	}
	defer r.be.Fini()

	r.be.Clear()
	w, h := r.be.Size()
	r.eng.HandleResize(float64(w), float64(r.composerRows(h)))
	r.eng.Tick()
	r.draw()

	for {
		ev := r.be.PollEvent()
		switch ev.Type {
		case backend.EventQuit:
			return nil
		case backend.EventKey:
			if r.handleKey(ev.Key) {
				return nil
			}
		case backend.EventMouse:
			r.handleMouse(ev)
		case backend.EventResize:
			r.eng.HandleResize(float64(ev.Width), float64(r.composerRows(ev.Height)))
		case backend.EventPaste:
			r.pasting = ev.Start
		case backend.EventWake:
			r.wakePending.Store(false)
		case backend.EventNone:
			continue
		}

		if r.stopReq.Load() {
			return nil
		}
		r.eng.Tick()
		if !r.pasting {
			r.draw()
		}
	}
}

// Stop asks a running Run to return after the current event. Safe from
// any goroutine.
func (r *Renderer) Stop() {
	r.stopReq.Store(true)
	r.be.PostInterrupt()
}

// Wake unblocks the event loop so it runs a tick and repaints. Wakes
// coalesce: at most one is in flight at a time.
func (r *Renderer) Wake() {
	if r.wakePending.CompareAndSwap(false, true) {
		r.be.PostInterrupt()
	}
}

// Flash shows a message on the status line until the next key press.
func (r *Renderer) Flash(msg string) {
	r.setFlash(msg, false)
}

// FlashError shows an error message on the status line until the next
// key press.
func (r *Renderer) FlashError(msg string) {
	r.setFlash(msg, true)
}

func (r *Renderer) setFlash(msg string, isErr bool) {
	r.mu.Lock()
	r.flash, r.flashErr = msg, isErr
	r.mu.Unlock()
	r.Wake()
}

func (r *Renderer) clearFlash() {
	r.mu.Lock()
	r.flash, r.flashErr = "", false
	r.mu.Unlock()
}

// handleKey routes one key press. Quit and preview confirmation are
// host commands, everything else goes to the engine.
func (r *Renderer) handleKey(ev key.Event) (quit bool) {
	r.clearFlash()

	switch {
	case ev.Matches("Ctrl+Q"):
		return true
	case ev.Matches("Ctrl+Y") && r.eng.ConfirmTranslation():
		return false
	}
	r.eng.HandleKey(ev)
	return false
}

// handleMouse routes one mouse event: wheel turns scroll, the primary
// button places the caret and drags out a selection.
func (r *Renderer) handleMouse(ev backend.Event) {
	switch ev.Button {
	case backend.WheelUp:
		r.scrollBy(-r.wheelStep)
	case backend.WheelDown:
		r.scrollBy(r.wheelStep)
	case backend.ButtonLeft:
		off := r.offsetAt(ev.MouseX, ev.MouseY)
		if off < 0 {
			return
		}
		if r.dragging {
			r.eng.HandleSelectionChange(r.dragAnchor, off)
			return
		}
		r.dragging = true
		r.dragAnchor = off
		r.eng.HandleSelectionChange(off, off)
	case backend.ButtonNone:
		r.dragging = false
	}
}

// scrollBy reports a wheel scroll of delta rows, clamped to the
// scrollable range.
func (r *Renderer) scrollBy(delta int) {
	_, h := r.be.Size()
	visible := r.composerRows(h)

	top := r.eng.ScrollTop() + float64(delta)
	limit := float64(r.eng.VisualLineCount() - visible)
	if limit < 0 {
		limit = 0
	}
	if top > limit {
		top = limit
	}
	if top < 0 {
		top = 0
	}
	r.eng.ObserveScroll(top, engine.SourceWheel)
}

// offsetAt maps a screen cell to a buffer offset, or -1 outside the
// composer area.
func (r *Renderer) offsetAt(x, y int) int {
	w, h := r.be.Size()
	if y < 0 || y >= r.composerRows(h) {
		return -1
	}
	text := r.eng.Text()
	rows := layoutRows(text, w)
	return offsetAtCell(rows, text, int(r.eng.ScrollTop())+y, x)
}

// composerRows returns how many screen rows the composer occupies.
func (r *Renderer) composerRows(h int) int {
	rows := h
	if r.showStatus {
		rows--
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

// draw repaints the whole surface from current engine state.
func (r *Renderer) draw() {
	w, h := r.be.Size()
	if w <= 0 || h <= 0 {
		return
	}
	compH := r.composerRows(h)

	text := r.eng.Text()
	selStart, selEnd := r.eng.Selection()
	info := r.eng.CaretInfo()
	ts := r.eng.TranslationState()

	rows := layoutRows(text, w)
	top := int(r.eng.ScrollTop())
	if top > len(rows)-1 {
		top = len(rows) - 1
	}
	if top < 0 {
		top = 0
	}

	dimFrom := annotationStarts(text)

	for y := 0; y < compH; y++ {
		i := top + y
		if i < len(rows) {
			r.drawRow(y, w, rows[i], text, selStart, selEnd, dimFrom[rows[i].Line])
		} else {
			r.fillRow(y, w, r.theme.Text)
		}
	}

	crow, ccol := caretCell(rows, text, info.Offset)
	if crow >= top && crow < top+compH && ccol < w {
		r.be.ShowCursor(ccol, crow-top)
	} else {
		r.be.HideCursor()
	}

	if ts.HasPreview() {
		r.drawPreview(rows, text, top, compH, w, ts)
	}
	if r.showStatus {
		r.drawStatus(h-1, w, info, ts)
	}

	r.be.Show()
}

// annotationStarts returns, per logical line, the absolute offset of
// its annotation delimiter, or -1 for unannotated lines. The dimmed
// span runs from the delimiter to the line end.
func annotationStarts(text string) []int {
	lines := strings.Split(text, "\n")
	out := make([]int, len(lines))
	base := 0
	for i, line := range lines {
		out[i] = -1
		if idx := strings.Index(line, annotate.Delimiter); idx >= 0 {
			out[i] = base + idx
		}
		base += len(line) + 1
	}
	return out
}

// drawRow paints one visual row: base text, the dimmed annotation
// tail, and the selection highlight on top.
func (r *Renderer) drawRow(y, width int, row Row, text string, selStart, selEnd, dimFrom int) {
	col := 0
	g := uniseg.NewGraphemes(text[row.Start:row.End])
	for g.Next() && col < width {
		from, _ := g.Positions()
		abs := row.Start + from

		st := r.theme.Text
		if dimFrom >= 0 && abs >= dimFrom {
			st = r.theme.Annotation
		}
		if selStart != selEnd && abs >= selStart && abs < selEnd {
			st = r.theme.Selection
		}

		cl := g.Str()
		cw := clusterWidth(cl, col)
		if cl == "\t" {
			for k := 0; k < cw && col+k < width; k++ {
				r.be.SetCell(col+k, y, ' ', nil, st)
			}
			col += cw
			continue
		}

		runes := g.Runes()
		r.be.SetCell(col, y, runes[0], runes[1:], st)
		col += cw
	}
	for ; col < width; col++ {
		r.be.SetCell(col, y, ' ', nil, r.theme.Text)
	}
}

// fillRow paints one blank row.
func (r *Renderer) fillRow(y, width int, st tcell.Style) {
	for x := 0; x < width; x++ {
		r.be.SetCell(x, y, ' ', nil, st)
	}
}

// drawPreview paints the translation preview bar on the row below the
// selection, clamped into the composer area.
func (r *Renderer) drawPreview(rows []Row, text string, top, compH, width int, ts annotate.State) {
	anchor, _ := caretCell(rows, text, ts.SelectionEnd)
	y := anchor - top + 1
	if y >= compH {
		y = compH - 1
	}
	if y < 0 {
		y = 0
	}
	r.drawBar(y, width, " → "+ts.TranslatedText+" ", r.theme.Preview)
}

// drawStatus paints the status line.
func (r *Renderer) drawStatus(y, width int, info engine.CaretInfo, ts annotate.State) {
	r.mu.Lock()
	flash, flashErr := r.flash, r.flashErr
	r.mu.Unlock()

	s := statusState{
		Language:    r.eng.PreferredLanguage(),
		Line:        info.LogicalLine + 1,
		Column:      info.Column + 1,
		VisualLine:  info.VisualLine,
		VisualTotal: r.eng.VisualLineCount(),
		CanUndo:     r.eng.CanUndo(),
		Translating: ts.IsTranslating,
		Preview:     ts.HasPreview(),
		Flash:       flash,
		FlashError:  flashErr,
	}
	left, right := buildStatus(s)

	style := r.theme.Status
	if flash != "" && flashErr {
		style = r.theme.StatusError
	}

	line := " " + left
	pad := width - cellsIn(line) - cellsIn(right) - 1
	if pad < 1 {
		line = truncateCells(line, width-cellsIn(right)-2)
		pad = width - cellsIn(line) - cellsIn(right) - 1
	}
	if pad < 0 {
		pad = 0
	}
	r.drawBar(y, width, line+strings.Repeat(" ", pad)+right+" ", style)
}

// drawBar paints one full-width row of styled text, truncating with an
// ellipsis when it overflows.
func (r *Renderer) drawBar(y, width int, s string, st tcell.Style) {
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := clusterWidth(g.Str(), col)
		if col+cw > width {
			if width > 0 {
				r.be.SetCell(width-1, y, '…', nil, st)
			}
			col = width
			break
		}
		runes := g.Runes()
		r.be.SetCell(col, y, runes[0], runes[1:], st)
		col += cw
	}
	for ; col < width; col++ {
		r.be.SetCell(col, y, ' ', nil, st)
	}
}

// truncateCells cuts s to at most max cells, ending in an ellipsis.
func truncateCells(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if cellsIn(s) <= max {
		return s
	}
	var b strings.Builder
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := clusterWidth(g.Str(), col)
		if col+cw > max-1 {
			break
		}
		b.WriteString(g.Str())
		col += cw
	}
	b.WriteString("…")
	return b.String()
}
