package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmoreno/cuaderno/internal/engine/annotate"
	"github.com/dmoreno/cuaderno/internal/event"
	"github.com/dmoreno/cuaderno/internal/input/key"
	"github.com/dmoreno/cuaderno/internal/metrics"
	"github.com/dmoreno/cuaderno/internal/sched"
)

// fakeTranslator records calls and answers from a fixed function.
type fakeTranslator struct {
	mu    sync.Mutex
	calls []string
	reply func(text, lang string) (string, error)
}

func (f *fakeTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.reply != nil {
		return f.reply(text, lang)
	}
	return "[" + lang + "]" + text, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// newTestEngine builds an engine on a virtual clock with an inline
// translation runner, so every async path is driven by Advance and
// Tick.
func newTestEngine(t *testing.T, opts ...Option) (*Engine, *sched.VirtualClock, *fakeTranslator) {
	t.Helper()
	clock := sched.NewVirtualClock()
	svc := &fakeTranslator{}
	base := []Option{
		WithClock(clock),
		WithTranslator(svc),
		WithTranslateRunner(func(fn func()) { fn() }),
	}
	e := New(append(base, opts...)...)
	t.Cleanup(e.Close)
	return e, clock, svc
}

func typeString(e *Engine, s string) {
	for _, r := range s {
		if r == '\n' {
			e.HandleKey(key.NewSpecialEvent(key.KeyEnter, key.ModNone))
			continue
		}
		e.HandleKey(key.NewRuneEvent(r, key.ModNone))
	}
}

func chord(e *Engine, spec string) bool {
	return e.HandleKey(key.MustParse(spec))
}

func TestNewDefaults(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if got := e.Text(); got != "" {
		t.Errorf("Text() = %q, want empty", got)
	}
	start, end := e.Selection()
	if start != 0 || end != 0 {
		t.Errorf("Selection() = (%d, %d), want (0, 0)", start, end)
	}
	if e.CanUndo() {
		t.Error("CanUndo() = true on a fresh engine")
	}
	if e.CanRedo() {
		t.Error("CanRedo() = true on a fresh engine")
	}
}

func TestWithContentStartsCaretAtEnd(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("hola"))

	if got := e.Text(); got != "hola" {
		t.Errorf("Text() = %q, want %q", got, "hola")
	}
	start, end := e.Selection()
	if start != 4 || end != 4 {
		t.Errorf("Selection() = (%d, %d), want (4, 4)", start, end)
	}
}

func TestTypingUpdatesBuffer(t *testing.T) {
	e, _, _ := newTestEngine(t)

	typeString(e, "hola mundo")

	if got := e.Text(); got != "hola mundo" {
		t.Errorf("Text() = %q, want %q", got, "hola mundo")
	}
	start, end := e.Selection()
	if start != 10 || end != 10 {
		t.Errorf("caret = (%d, %d), want (10, 10)", start, end)
	}
}

func TestEnterInsertsNewline(t *testing.T) {
	e, _, _ := newTestEngine(t)

	typeString(e, "uno\ndos")

	if got := e.Text(); got != "uno\ndos" {
		t.Errorf("Text() = %q, want %q", got, "uno\ndos")
	}
}

func TestBackspaceRemovesGraphemeCluster(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("año"))

	e.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	if got := e.Text(); got != "añ" {
		t.Errorf("after one backspace Text() = %q, want %q", got, "añ")
	}

	e.HandleKey(key.NewSpecialEvent(key.KeyBackspace, key.ModNone))
	if got := e.Text(); got != "a" {
		t.Errorf("after two backspaces Text() = %q, want %q", got, "a")
	}
}

func TestDeleteRemovesForward(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("casa"))
	e.SetSelection(0, 0)

	e.HandleKey(key.NewSpecialEvent(key.KeyDelete, key.ModNone))

	if got := e.Text(); got != "asa" {
		t.Errorf("Text() = %q, want %q", got, "asa")
	}
}

func TestTypingReplacesSelection(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("el gato"))
	e.SetSelection(3, 7)

	e.HandleKey(key.NewRuneEvent('p', key.ModNone))

	if got := e.Text(); got != "el p" {
		t.Errorf("Text() = %q, want %q", got, "el p")
	}
	start, end := e.Selection()
	if start != 4 || end != 4 {
		t.Errorf("caret = (%d, %d), want (4, 4)", start, end)
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	e, _, _ := newTestEngine(t)
	typeString(e, "hola")

	if !e.CanUndo() {
		t.Fatal("CanUndo() = false with pending typed state")
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Text(); got != "" {
		t.Errorf("after undo Text() = %q, want empty", got)
	}

	if err := e.Redo(); err != nil {
		t.Fatalf("Redo() error = %v", err)
	}
	if got := e.Text(); got != "hola" {
		t.Errorf("after redo Text() = %q, want %q", got, "hola")
	}
}

func TestUndoAtBottomIsSentinelNoOp(t *testing.T) {
	e, _, _ := newTestEngine(t)

	if err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo() error = %v, want ErrNothingToUndo", err)
	}
	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() error = %v, want ErrNothingToRedo", err)
	}
}

func TestUndoRestoresSelection(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("hola mundo"))
	e.SetSelection(0, 4)

	// The formatting checkpoint snapshots the live selection, so the
	// undo lands back on exactly what was selected before the wrap.
	chord(e, "Ctrl+B")
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}

	if got := e.Text(); got != "hola mundo" {
		t.Errorf("Text() = %q, want %q", got, "hola mundo")
	}
	start, end := e.Selection()
	if start != 0 || end != 4 {
		t.Errorf("restored selection = (%d, %d), want (0, 4)", start, end)
	}
}

func TestQuietPeriodCheckpoints(t *testing.T) {
	e, clock, _ := newTestEngine(t)

	typeString(e, "uno")
	clock.Advance(time.Second) // past the coalescing delay

	typeString(e, " dos")
	clock.Advance(time.Second)

	// Two checkpoints: undo lands between them, not at the start.
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Text(); got != "uno" {
		t.Errorf("after undo Text() = %q, want %q", got, "uno")
	}
}

func TestTypingAfterUndoTruncatesRedo(t *testing.T) {
	e, clock, _ := newTestEngine(t)
	typeString(e, "uno")
	clock.Advance(time.Second)
	typeString(e, " dos")
	clock.Advance(time.Second)

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	typeString(e, " tres")

	if err := e.Redo(); !errors.Is(err, ErrNothingToRedo) {
		t.Errorf("Redo() after divergent typing error = %v, want ErrNothingToRedo", err)
	}
	if got := e.Text(); got != "uno tres" {
		t.Errorf("Text() = %q, want %q", got, "uno tres")
	}
}

func TestBoldWrapSelection(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("hola mundo"))
	e.SetSelection(0, 4)

	if !chord(e, "Ctrl+B") {
		t.Fatal("Ctrl+B not consumed")
	}

	if got := e.Text(); got != "**hola** mundo" {
		t.Errorf("Text() = %q, want %q", got, "**hola** mundo")
	}
	start, end := e.Selection()
	if start != 0 || end != 8 {
		t.Errorf("selection = (%d, %d), want (0, 8) including markers", start, end)
	}
}

func TestBoldCollapsedPlacesCaretBetweenMarkers(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("hola"))

	chord(e, "Ctrl+B")

	if got := e.Text(); got != "hola****" {
		t.Errorf("Text() = %q, want %q", got, "hola****")
	}
	start, end := e.Selection()
	if start != 6 || end != 6 {
		t.Errorf("caret = (%d, %d), want (6, 6)", start, end)
	}
}

func TestFormattingIsOneUndoStep(t *testing.T) {
	e, _, _ := newTestEngine(t)
	typeString(e, "hola")
	e.SetSelection(0, 4)

	chord(e, "Ctrl+I")
	if got := e.Text(); got != "*hola*" {
		t.Fatalf("Text() = %q, want %q", got, "*hola*")
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Text(); got != "hola" {
		t.Errorf("one undo = %q, want %q", got, "hola")
	}
}

func TestTabIndentsSelectedLines(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("uno\ndos\ntres"))
	e.SetSelection(1, 9)

	e.HandleKey(key.NewSpecialEvent(key.KeyTab, key.ModNone))

	want := "    uno\n    dos\n    tres"
	if got := e.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	// Selection grows from the start of the first touched line to the
	// old end plus one indent per touched line.
	start, end := e.Selection()
	if start != 0 || end != 21 {
		t.Errorf("selection = (%d, %d), want (0, 21)", start, end)
	}
}

func TestSendChordSubmitsAndClears(t *testing.T) {
	e, _, _ := newTestEngine(t)
	typeString(e, "nota uno")

	var submitted []string
	e.Bus().SubscribeKind(event.KindNoteSubmitted, func(ev event.Event) {
		submitted = append(submitted, ev.(event.NoteSubmitted).Text)
	})

	if !chord(e, "Ctrl+Enter") {
		t.Fatal("Ctrl+Enter not consumed")
	}

	if len(submitted) != 1 || submitted[0] != "nota uno" {
		t.Fatalf("submitted = %v, want [nota uno]", submitted)
	}
	if got := e.Text(); got != "" {
		t.Errorf("composer after send = %q, want empty", got)
	}
	if e.CanUndo() {
		t.Error("CanUndo() = true after send, history should reset")
	}
}

func TestSubmitEmptyNoteRejected(t *testing.T) {
	e, _, _ := newTestEngine(t)
	typeString(e, "   ")

	if err := e.SubmitNote(); !errors.Is(err, ErrEmptyNote) {
		t.Errorf("SubmitNote() error = %v, want ErrEmptyNote", err)
	}
}

func TestAutoTranslatePreview(t *testing.T) {
	e, clock, svc := newTestEngine(t, WithContent("hola mundo"))

	e.HandleSelectionChange(0, 4)
	if svc.callCount() != 0 {
		t.Fatal("service called before the quiet period")
	}

	clock.Advance(700 * time.Millisecond)
	e.Tick()

	st := e.TranslationState()
	if st.TranslatedText != "[en]hola" {
		t.Errorf("TranslatedText = %q, want %q", st.TranslatedText, "[en]hola")
	}
	if got := e.Text(); got != "hola mundo" {
		t.Errorf("preview mutated buffer: %q", got)
	}
}

func TestConfirmMergesPreview(t *testing.T) {
	e, clock, _ := newTestEngine(t, WithContent("hola mundo"))

	e.HandleSelectionChange(0, 4)
	clock.Advance(700 * time.Millisecond)
	e.Tick()

	if !e.ConfirmTranslation() {
		t.Fatal("ConfirmTranslation() = false with a ready preview")
	}

	want := "hola :: [en]hola mundo"
	if got := e.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestSelectionMoveDiscardsStalePreview(t *testing.T) {
	e, clock, svc := newTestEngine(t, WithContent("hola mundo"))

	e.HandleSelectionChange(0, 4)
	clock.Advance(700 * time.Millisecond)
	// The reply is queued but not yet applied; moving the selection
	// first must invalidate it.
	e.HandleSelectionChange(5, 10)
	e.Tick()

	if st := e.TranslationState(); st.TranslatedText != "" {
		t.Errorf("stale preview applied: %q", st.TranslatedText)
	}
	if svc.callCount() != 1 {
		t.Errorf("service calls = %d, want 1", svc.callCount())
	}
}

func TestMultiLineTranslateMergesDestructively(t *testing.T) {
	e, _, svc := newTestEngine(t, WithContent("uno\ndos"))
	svc.reply = func(text, lang string) (string, error) {
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			lines[i] = "T" + l
		}
		return strings.Join(lines, "\n"), nil
	}

	e.HandleSelectionChange(0, 7)
	e.TranslateSelection("")
	e.Tick()

	want := "uno :: Tuno\ndos :: Tdos"
	if got := e.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	start, end := e.Selection()
	if start != len(want) || end != len(want) {
		t.Errorf("caret = (%d, %d), want at end %d", start, end, len(want))
	}
}

func TestRetranslateDerivesFromOriginals(t *testing.T) {
	e, _, svc := newTestEngine(t, WithContent("uno :: one\ndos :: two"))
	svc.reply = func(text, lang string) (string, error) {
		if strings.Contains(text, "::") {
			t.Errorf("service payload contains delimiter: %q", text)
		}
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			lines[i] = l + "!"
		}
		return strings.Join(lines, "\n"), nil
	}

	e.HandleSelectionChange(0, len(e.Text()))
	e.TranslateSelection("")
	e.Tick()

	want := "uno :: uno!\ndos :: dos!"
	if got := e.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestTranslateFailureLeavesBufferAlone(t *testing.T) {
	e, _, svc := newTestEngine(t, WithContent("uno\ndos"))
	svc.reply = func(string, string) (string, error) {
		return "", errors.New("service down")
	}

	var failed int
	e.Bus().SubscribeKind(event.KindTranslationFailed, func(event.Event) { failed++ })

	e.HandleSelectionChange(0, 7)
	e.TranslateSelection("")
	e.Tick()

	if got := e.Text(); got != "uno\ndos" {
		t.Errorf("Text() = %q, want unchanged", got)
	}
	if failed != 1 {
		t.Errorf("TranslationFailed events = %d, want 1", failed)
	}
}

func TestMergeIsOneUndoStep(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("uno\ndos"))

	e.HandleSelectionChange(0, 7)
	e.TranslateSelection("es")
	e.Tick()

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Text(); got != "uno\ndos" {
		t.Errorf("after undo Text() = %q, want %q", got, "uno\ndos")
	}
}

func TestPreferredLanguagePersists(t *testing.T) {
	e, _, svc := newTestEngine(t, WithContent("uno\ndos\n\ntres\ncuatro"))

	e.HandleSelectionChange(0, 7)
	e.TranslateSelection("pt")
	e.Tick()

	if got := e.PreferredLanguage(); got != "pt" {
		t.Errorf("PreferredLanguage() = %q, want %q", got, "pt")
	}

	// The next explicit translate reuses the stored language.
	text := e.Text()
	start := strings.Index(text, "tres")
	e.HandleSelectionChange(start, len(text))
	e.TranslateSelection("")
	e.Tick()

	if got := svc.callCount(); got != 2 {
		t.Fatalf("service calls = %d, want 2", got)
	}
	if !strings.Contains(e.Text(), "tres :: [pt]tres") {
		t.Errorf("second merge did not use preferred language: %q", e.Text())
	}
}

func TestEscapeClearsSelectionAndPreview(t *testing.T) {
	e, clock, _ := newTestEngine(t, WithContent("hola mundo"))

	e.HandleSelectionChange(0, 4)
	clock.Advance(700 * time.Millisecond)
	e.Tick()
	if st := e.TranslationState(); st.TranslatedText == "" {
		t.Fatal("no preview to clear")
	}

	chord(e, "Escape")

	if st := e.TranslationState(); st.TranslatedText != "" {
		t.Errorf("preview survived Escape: %q", st.TranslatedText)
	}
	start, end := e.Selection()
	if start != end {
		t.Errorf("selection = (%d, %d), want collapsed", start, end)
	}
}

func TestSelectionChangeClampsBounds(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("hola"))

	e.HandleSelectionChange(-3, 99)

	start, end := e.Selection()
	if start != 0 || end != 4 {
		t.Errorf("Selection() = (%d, %d), want (0, 4)", start, end)
	}
}

func TestSetTextReseedsHistory(t *testing.T) {
	e, _, _ := newTestEngine(t)
	typeString(e, "borrador viejo")

	e.SetText("borrador nuevo")

	if e.CanUndo() {
		t.Error("CanUndo() = true after SetText")
	}
	start, end := e.Selection()
	if start != len("borrador nuevo") || end != start {
		t.Errorf("caret = (%d, %d), want at end", start, end)
	}
}

func TestCaretInfoTracksWrap(t *testing.T) {
	e, _, _ := newTestEngine(t,
		WithContent("aaaaaaaaaa\nbb"),
		WithMetrics(metrics.NewFixed(1)),
		WithGeometry(1, 5, 10),
	)

	// Line 0 is 10 cells wide and wraps into two visual lines at
	// width 5; "bb" starts at visual line 3.
	e.SetSelection(12, 12)

	info := e.CaretInfo()
	if info.LogicalLine != 1 {
		t.Errorf("LogicalLine = %d, want 1", info.LogicalLine)
	}
	if info.Column != 1 {
		t.Errorf("Column = %d, want 1", info.Column)
	}
	if info.VisualLine != 3 {
		t.Errorf("VisualLine = %d, want 3", info.VisualLine)
	}
	if got := e.VisualLineCount(); got != 3 {
		t.Errorf("VisualLineCount() = %d, want 3", got)
	}
}

func TestCaretRevealScrollsOnTick(t *testing.T) {
	e, _, _ := newTestEngine(t, WithGeometry(1, 0, 5))

	var scrolls []float64
	e.Bus().SubscribeKind(event.KindScrollChanged, func(ev event.Event) {
		scrolls = append(scrolls, ev.(event.ScrollChanged).Top)
	})

	typeString(e, strings.Repeat("x\n", 19)+"fin")
	if e.ScrollTop() != 0 {
		t.Fatal("scroll applied before Tick")
	}

	e.Tick()

	if e.ScrollTop() == 0 {
		t.Error("ScrollTop() = 0 after reveal, caret off screen")
	}
	if len(scrolls) == 0 {
		t.Error("no ScrollChanged event published")
	}
}

func TestUndoForcesScroll(t *testing.T) {
	e, clock, _ := newTestEngine(t, WithGeometry(1, 0, 5))
	typeString(e, "uno")
	clock.Advance(time.Second) // checkpoint the short document

	typeString(e, strings.Repeat("\nx", 19))
	clock.Advance(time.Second)
	e.Tick()
	if e.ScrollTop() == 0 {
		t.Fatal("caret reveal did not scroll")
	}

	// Walk the history back to the one-line document; the restore must
	// scroll the window back to the top even though the deltas between
	// intermediate checkpoints are small.
	for e.Text() != "uno" {
		if err := e.Undo(); err != nil {
			t.Fatalf("Undo() error = %v", err)
		}
	}
	e.Tick()

	if got := e.ScrollTop(); got != 0 {
		t.Errorf("ScrollTop() = %v after undo to the top, want 0", got)
	}
}

func TestObserveScrollEchoSuppression(t *testing.T) {
	e, _, _ := newTestEngine(t, WithGeometry(1, 0, 5))

	var observed []string
	e.Bus().SubscribeKind(event.KindScrollChanged, func(ev event.Event) {
		observed = append(observed, ev.(event.ScrollChanged).Source)
	})

	typeString(e, strings.Repeat("x\n", 19)+"fin")
	e.Tick()
	n := len(observed)

	// The host echoes the programmatic scroll back; it must be absorbed.
	e.ObserveScroll(e.ScrollTop(), SourceKeyboard)
	if len(observed) != n {
		t.Fatalf("echo published: %v", observed)
	}

	// A genuine user scroll afterwards is reported.
	e.ObserveScroll(2, SourceUser)
	if len(observed) != n+1 || observed[n] != "user" {
		t.Errorf("observed = %v, want trailing user scroll", observed)
	}
}

func TestArrowMovesOverGraphemes(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("año"))

	e.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	_, end := e.Selection()
	if end != 3 {
		t.Errorf("caret after Left = %d, want 3 (between ñ and o)", end)
	}

	e.HandleKey(key.NewSpecialEvent(key.KeyLeft, key.ModNone))
	_, end = e.Selection()
	if end != 1 {
		t.Errorf("caret after second Left = %d, want 1", end)
	}
}

func TestShiftArrowExtendsSelection(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("hola"))
	e.SetSelection(0, 0)

	e.HandleKey(key.NewSpecialEvent(key.KeyRight, key.ModShift))
	e.HandleKey(key.NewSpecialEvent(key.KeyRight, key.ModShift))

	start, end := e.Selection()
	if start != 0 || end != 2 {
		t.Errorf("Selection() = (%d, %d), want (0, 2)", start, end)
	}
}

func TestHomeEndNavigation(t *testing.T) {
	e, _, _ := newTestEngine(t, WithContent("uno\ndos tres"))
	e.SetSelection(8, 8)

	e.HandleKey(key.NewSpecialEvent(key.KeyHome, key.ModNone))
	_, end := e.Selection()
	if end != 4 {
		t.Errorf("Home caret = %d, want 4", end)
	}

	e.HandleKey(key.NewSpecialEvent(key.KeyEnd, key.ModNone))
	_, end = e.Selection()
	if end != 12 {
		t.Errorf("End caret = %d, want 12", end)
	}
}

func TestVerticalMoveSnapsOffRuneBoundary(t *testing.T) {
	// Moving down from column 2 of "xx" into "año" would land inside
	// the two-byte ñ; the caret must snap back to its start.
	e, _, _ := newTestEngine(t, WithContent("xx\naño"))
	e.SetSelection(2, 2)

	e.HandleKey(key.NewSpecialEvent(key.KeyDown, key.ModNone))

	_, end := e.Selection()
	if end != 4 {
		t.Errorf("caret = %d, want 4 (start of ñ)", end)
	}
}

func TestRuntimeThresholdAdjustment(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetCoalescing(3, 100*time.Millisecond)

	typeString(e, "abc") // three chars reach the lowered threshold

	if !e.hist.CanUndo() {
		t.Fatal("no checkpoint despite reaching the char threshold")
	}
	if err := e.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if got := e.Text(); got != "" {
		t.Errorf("after undo Text() = %q, want empty", got)
	}
}

func TestTranslatorUnavailable(t *testing.T) {
	clock := sched.NewVirtualClock()
	e := New(
		WithClock(clock),
		WithContent("hola mundo"),
		WithTranslateRunner(func(fn func()) { fn() }),
	)
	t.Cleanup(e.Close)

	var gotErr error
	e.Bus().SubscribeKind(event.KindTranslationFailed, func(ev event.Event) {
		gotErr = ev.(event.TranslationFailed).Err
	})

	e.HandleSelectionChange(0, 4)
	clock.Advance(annotate.DefaultDebounceDelay)
	e.Tick()

	if !errors.Is(gotErr, ErrNoTranslator) {
		t.Errorf("failure err = %v, want ErrNoTranslator", gotErr)
	}
}
