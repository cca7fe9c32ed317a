package engine

import (
	"strings"
	"time"

	"github.com/dmoreno/cuaderno/internal/dispatcher"
	"github.com/dmoreno/cuaderno/internal/engine/annotate"
	"github.com/dmoreno/cuaderno/internal/event"
	"github.com/dmoreno/cuaderno/internal/metrics"
	"github.com/dmoreno/cuaderno/internal/sched"
)

// Default configuration values.
const (
	DefaultHistoryDepth = 100
	DefaultIndentWidth  = 4
	DefaultLineHeight   = 1.0
	DefaultHeight       = 24.0
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithContent sets the initial composer content. The caret starts at
// the end of it.
func WithContent(content string) Option {
	return func(e *Engine) {
		e.initContent = content
	}
}

// WithClock sets the clock driving the history and translation
// debounce timers. Tests pass a virtual clock.
func WithClock(clock sched.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithBus sets the event bus the engine publishes on. Without it the
// engine creates its own.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		if bus != nil {
			e.bus = bus
		}
	}
}

// WithQueue sets the deferred-work queue. The host drains it once per
// event tick via Tick.
func WithQueue(q *sched.Queue) Option {
	return func(e *Engine) {
		if q != nil {
			e.queue = q
		}
	}
}

// WithTranslator sets the translation service backing selection
// translation. Without it every translation fails with ErrNoTranslator.
func WithTranslator(svc annotate.Service) Option {
	return func(e *Engine) {
		if svc != nil {
			e.translator = svc
		}
	}
}

// WithMetrics sets the width measurement provider used for visual line
// math. A nil provider leaves every line unwrapped.
func WithMetrics(p metrics.Provider) Option {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithHistoryDepth caps the number of undo checkpoints.
func WithHistoryDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historyDepth = n
		}
	}
}

// WithCoalescing sets the history coalescing thresholds: the cumulative
// character delta that forces an immediate checkpoint and the quiet
// period after which a pending one is taken.
func WithCoalescing(chars int, delay time.Duration) Option {
	return func(e *Engine) {
		e.coalesceChars = chars
		e.coalesceDelay = delay
	}
}

// WithAutoTranslateDelay sets the quiet period before a qualifying
// selection is auto-translated for preview.
func WithAutoTranslateDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.autoDelay = d
	}
}

// WithTranslateTimeout bounds a single translation service call.
func WithTranslateTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.callTimeout = d
	}
}

// WithLanguage sets the initial preferred target language.
func WithLanguage(lang string) Option {
	return func(e *Engine) {
		e.language = lang
	}
}

// WithBindings replaces the keyboard chord table.
func WithBindings(b dispatcher.Bindings) Option {
	return func(e *Engine) {
		e.bindings = &b
	}
}

// WithIndentWidth sets how many spaces a Tab indent inserts.
func WithIndentWidth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.indent = strings.Repeat(" ", n)
		}
	}
}

// WithGeometry sets the initial surface geometry in scroll units:
// visual line height, wrap width, and viewport height. A zero width
// disables wrapping until the first resize.
func WithGeometry(lineHeight, width, height float64) Option {
	return func(e *Engine) {
		if lineHeight > 0 {
			e.lineHeight = lineHeight
		}
		if width >= 0 {
			e.viewportWidth = width
		}
		if height > 0 {
			e.height = height
		}
	}
}

// WithTranslateRunner overrides how translation service calls are
// dispatched. The default runs each call on its own goroutine; tests
// pass an inline runner for determinism.
func WithTranslateRunner(run func(func())) Option {
	return func(e *Engine) {
		e.runner = run
	}
}
