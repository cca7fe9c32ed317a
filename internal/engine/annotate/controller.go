package annotate

import (
	"context"
	"sync"
	"time"

	"github.com/dmoreno/cuaderno/internal/event"
	"github.com/dmoreno/cuaderno/internal/sched"
)

const (
	// DefaultDebounceDelay is the quiet period before an auto-translate
	// preview fires.
	DefaultDebounceDelay = 700 * time.Millisecond

	// DefaultCallTimeout bounds a single translation service call.
	DefaultCallTimeout = 10 * time.Second

	// DefaultLanguage is the target language used until the user picks
	// one.
	DefaultLanguage = "en"
)

// Service translates text into a target language. Payloads may contain
// line-break markers that the service is expected to preserve
// positionally in its output.
type Service interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// MergeFunc applies a destructive merge: replace [start, end) in the
// buffer with replacement and move the caret to the end of the
// inserted text. The buffer owner supplies it.
type MergeFunc func(start, end int, replacement string)

// Controller tracks the current selection and drives translation:
// debounced display-only previews for single unannotated lines, and
// explicit destructive merges for everything else. Service calls run
// asynchronously; each is tagged with the selection generation at
// launch and its result is discarded if the selection has moved on.
type Controller struct {
	mu    sync.Mutex
	svc   Service
	deb   *sched.Debouncer
	bus   *event.Bus
	merge MergeFunc

	run     func(func()) // dispatches service calls
	apply   func(func()) // defers completion back onto the engine tick
	timeout time.Duration

	gen   uint64
	state State

	baseCtx context.Context
	cancel  context.CancelFunc

	clock sched.Clock
	delay time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock backing the auto-translate debounce.
func WithClock(clock sched.Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

// WithDebounceDelay overrides the auto-translate quiet period.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithCallTimeout overrides the per-call service timeout.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBus sets the event bus for lifecycle notifications.
func WithBus(bus *event.Bus) Option {
	return func(c *Controller) { c.bus = bus }
}

// WithLanguage sets the initial preferred target language.
func WithLanguage(lang string) Option {
	return func(c *Controller) {
		if lang != "" {
			c.state.PreferredLanguage = lang
		}
	}
}

// WithRunner overrides how service calls are dispatched. The default
// runs each call on its own goroutine; tests pass an inline runner to
// keep everything on one thread.
func WithRunner(run func(func())) Option {
	return func(c *Controller) { c.run = run }
}

// WithApplyFunc overrides how completions are applied. The default
// applies inline; the engine defers them onto its task queue so all
// state changes land between input events.
func WithApplyFunc(apply func(func())) Option {
	return func(c *Controller) { c.apply = apply }
}

// NewController creates a selection translation controller backed by
// svc.
func NewController(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:     svc,
		timeout: DefaultCallTimeout,
		delay:   DefaultDebounceDelay,
		run:     func(fn func()) { go fn() },
		apply:   func(fn func()) { fn() },
		state:   State{PreferredLanguage: DefaultLanguage},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseCtx, c.cancel = context.WithCancel(context.Background())
	c.deb = sched.NewDebouncer(c.clock, c.delay, c.startPreview)
	return c
}

// OnSelectionChanged tracks a new selection. An empty selection counts
// as selection loss and clears the tracked state. A qualifying
// selection restarts the auto-translate debounce; anything multi-line
// or already annotated cancels it and waits for an explicit command.
func (c *Controller) OnSelectionChanged(start, end int, text string) {
	c.mu.Lock()
	c.gen++
	if text == "" || start >= end {
		c.clearLocked()
		c.mu.Unlock()
		c.deb.Cancel()
		return
	}

	c.state = State{
		SelectedText:      text,
		PreferredLanguage: c.state.PreferredLanguage,
		SelectionStart:    start,
		SelectionEnd:      end,
	}
	auto := c.state.AutoTranslatable()
	c.mu.Unlock()

	if auto {
		c.deb.Call()
	} else {
		c.deb.Cancel()
	}
}

// TranslateSelection translates the current selection now. A non-empty
// lang becomes the preferred language for this and future selections.
// Single unannotated lines get an immediate display-only preview;
// multi-line or annotated selections are merged destructively through
// the MergeFunc as soon as the service responds.
func (c *Controller) TranslateSelection(lang string) {
	c.mu.Lock()
	if lang != "" {
		c.state.PreferredLanguage = lang
	}
	if !c.state.HasSelection() {
		c.mu.Unlock()
		return
	}
	if c.state.AutoTranslatable() {
		c.mu.Unlock()
		c.deb.Cancel()
		c.startPreview()
		return
	}

	gen := c.gen
	start, end := c.state.SelectionStart, c.state.SelectionEnd
	originals := Originals(c.state.SelectedText)
	target := c.state.PreferredLanguage
	payload := JoinForService(originals)
	if payload == "" {
		c.mu.Unlock()
		return
	}
	c.state.IsTranslating = true
	c.mu.Unlock()

	c.deb.Cancel()
	c.bus.Publish(event.TranslationStarted{Generation: gen, Text: payload, TargetLang: target})
	c.run(func() { c.completeMerge(gen, start, end, originals, payload, target) })
}

// ConfirmMerge commits a ready preview into the buffer, pairing the
// selection's original with the previewed translation. Returns false
// if no preview is ready.
func (c *Controller) ConfirmMerge() bool {
	c.mu.Lock()
	if !c.state.HasSelection() || !c.state.HasPreview() {
		c.mu.Unlock()
		return false
	}
	start, end := c.state.SelectionStart, c.state.SelectionEnd
	replacement := Pair(OriginalOf(c.state.SelectedText), c.state.TranslatedText)
	c.gen++
	c.clearLocked()
	fn := c.merge
	c.mu.Unlock()

	if fn != nil {
		fn(start, end, replacement)
	}
	return true
}

// ClearSelection drops the tracked selection, cancels any pending
// debounce, and invalidates in-flight service calls.
func (c *Controller) ClearSelection() {
	c.deb.Cancel()
	c.mu.Lock()
	c.gen++
	c.clearLocked()
	c.mu.Unlock()
}

// SetDebounceDelay adjusts the auto-translate quiet period at runtime.
// Non-positive values are ignored.
func (c *Controller) SetDebounceDelay(d time.Duration) {
	if d > 0 {
		c.deb.SetDelay(d)
	}
}

// SetPreferredLanguage persists the target language for future
// selections. Existing annotations are not re-translated.
func (c *Controller) SetPreferredLanguage(lang string) {
	if lang == "" {
		return
	}
	c.mu.Lock()
	c.state.PreferredLanguage = lang
	c.mu.Unlock()
}

// PreferredLanguage returns the current target language.
func (c *Controller) PreferredLanguage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.PreferredLanguage
}

// State returns a snapshot of the selection translation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetMergeFunc installs the buffer mutation hook for destructive
// merges.
func (c *Controller) SetMergeFunc(fn MergeFunc) {
	c.mu.Lock()
	c.merge = fn
	c.mu.Unlock()
}

// Pending returns true if an auto-translate debounce is armed.
func (c *Controller) Pending() bool {
	return c.deb.IsPending()
}

// Close cancels pending timers and in-flight service calls.
func (c *Controller) Close() {
	c.deb.Cancel()
	c.cancel()
}

// startPreview begins a display-only service call for the current
// selection. Used both by the debounce callback and the explicit
// translate path.
func (c *Controller) startPreview() {
	c.mu.Lock()
	if !c.state.AutoTranslatable() || c.state.IsTranslating {
		c.mu.Unlock()
		return
	}
	gen := c.gen
	text := c.state.SelectedText
	target := c.state.PreferredLanguage
	c.state.IsTranslating = true
	c.mu.Unlock()

	c.bus.Publish(event.TranslationStarted{Generation: gen, Text: text, TargetLang: target})
	c.run(func() { c.completePreview(gen, text, target) })
}

func (c *Controller) completePreview(gen uint64, text, target string) {
	ctx, cancel := context.WithTimeout(c.baseCtx, c.timeout)
	defer cancel()
	translated, err := c.svc.Translate(ctx, text, target)

	c.apply(func() {
		c.mu.Lock()
		if gen != c.gen {
			// Stale: the selection moved on while the call was in flight.
			c.mu.Unlock()
			return
		}
		c.state.IsTranslating = false
		if err != nil {
			c.mu.Unlock()
			c.bus.Publish(event.TranslationFailed{Generation: gen, TargetLang: target, Err: err})
			return
		}
		c.state.TranslatedText = translated
		c.mu.Unlock()
		c.bus.Publish(event.TranslationCompleted{
			Generation: gen,
			Original:   text,
			Translated: translated,
			TargetLang: target,
		})
	})
}

func (c *Controller) completeMerge(gen uint64, start, end int, originals []string, payload, target string) {
	ctx, cancel := context.WithTimeout(c.baseCtx, c.timeout)
	defer cancel()
	result, err := c.svc.Translate(ctx, payload, target)

	c.apply(func() {
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.state.IsTranslating = false
		if err != nil {
			c.mu.Unlock()
			c.bus.Publish(event.TranslationFailed{Generation: gen, TargetLang: target, Err: err})
			return
		}
		merged := MergeResult(originals, result)
		c.gen++ // the merge consumes the selection
		c.clearLocked()
		fn := c.merge
		c.mu.Unlock()

		if fn != nil {
			fn(start, end, merged)
		}
		c.bus.Publish(event.TranslationCompleted{
			Generation: gen,
			Original:   payload,
			Translated: result,
			TargetLang: target,
			Merged:     true,
		})
	})
}

// clearLocked resets everything except the preferred language.
func (c *Controller) clearLocked() {
	c.state = State{PreferredLanguage: c.state.PreferredLanguage}
}
