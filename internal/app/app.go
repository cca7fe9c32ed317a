package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmoreno/cuaderno/internal/config"
	"github.com/dmoreno/cuaderno/internal/engine"
	"github.com/dmoreno/cuaderno/internal/event"
	"github.com/dmoreno/cuaderno/internal/metrics"
	"github.com/dmoreno/cuaderno/internal/notebook"
	"github.com/dmoreno/cuaderno/internal/renderer"
	"github.com/dmoreno/cuaderno/internal/renderer/backend"
	"github.com/dmoreno/cuaderno/internal/sched"
	"github.com/dmoreno/cuaderno/internal/translate"
)

// draftSaveDelay is the typing quiet period before the composer draft
// is written to the state file.
const draftSaveDelay = time.Second

// Application wires the composer together and manages its lifecycle.
type Application struct {
	mu sync.RWMutex

	opts Options

	logger  *Logger
	logFile io.Closer

	cfg   *config.Config
	bus   *event.Bus
	queue *sched.Queue
	state *State

	eng  *engine.Engine
	book *notebook.Book

	backend  backend.Backend
	renderer *renderer.Renderer

	subs *subscriptionManager

	draft        *sched.Debouncer
	draftMu      sync.Mutex
	pendingDraft string

	running atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigDir overrides the configuration directory, which also
	// holds the state file.
	ConfigDir string

	// ConfigPath is an explicit settings file path. Empty uses the
	// default discovery under the config directory.
	ConfigPath string

	// LogLevel overrides the configured logging level when non-empty.
	LogLevel string
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{opts: opts}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Settings. Load problems are non-fatal: the defaults carry the
	// app, and the error is logged once the logger exists.
	var cfgOpts []config.Option
	if app.opts.ConfigDir != "" {
		cfgOpts = append(cfgOpts, config.WithConfigDir(app.opts.ConfigDir))
	}
	if app.opts.ConfigPath != "" {
		cfgOpts = append(cfgOpts, config.WithFile(app.opts.ConfigPath))
	}
	app.cfg = config.New(cfgOpts...)
	loadErr := app.cfg.Load(context.Background())

	// 2. Logger
	if err := app.initLogger(); err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	if loadErr != nil {
		app.logger.Warn("settings load failed, using defaults: %v", loadErr)
	}
	if err := app.cfg.Validate(); err != nil {
		app.logger.Warn("settings invalid: %v", err)
	}

	// 3. Event bus and deferred-work queue
	app.bus = event.NewBus()
	app.queue = sched.NewQueue()

	// 4. Persisted state
	statePath := filepath.Join(app.cfg.ConfigDir(), "state.json")
	st, err := OpenState(statePath)
	if err != nil {
		app.logger.Warn("state unreadable, starting fresh: %v", err)
		st = newState(statePath)
	}
	app.state = st
	app.draft = sched.NewDebouncer(sched.System(), draftSaveDelay, app.saveDraft)

	// 5. Translation service. Failure leaves the composer usable with
	// translation commands reporting their error.
	tr := app.cfg.Translation()
	var svc translate.Service
	if tr.Enabled {
		s, err := translate.New(context.Background(), translate.Config{
			Provider: tr.Provider,
			APIKey:   tr.APIKey,
			Model:    tr.Model,
			CacheTTL: tr.CacheTTL,
		})
		if err != nil {
			app.logger.Error("translation unavailable: %v", err)
		} else {
			svc = s
		}
	}

	// 6. Target language: the persisted choice wins over settings.
	lang := app.state.PreferredLanguage()
	if lang == "" {
		lang = tr.TargetLang
	}

	// 7. Engine
	ed := app.cfg.Editor()
	engOpts := []engine.Option{
		engine.WithBus(app.bus),
		engine.WithQueue(app.queue),
		engine.WithMetrics(metrics.NewMonospace()),
		engine.WithLanguage(lang),
		engine.WithCoalescing(ed.HistoryCoalesceChars, ed.HistoryCoalesceDelay),
		engine.WithHistoryDepth(ed.HistoryDepth),
		engine.WithIndentWidth(ed.IndentWidth),
		engine.WithAutoTranslateDelay(tr.AutoDelay),
		engine.WithTranslateTimeout(tr.Timeout),
	}
	if svc != nil {
		engOpts = append(engOpts, engine.WithTranslator(svc))
	}
	if draft := app.state.Draft(); draft != "" {
		engOpts = append(engOpts, engine.WithContent(draft))
	}
	app.eng = engine.New(engOpts...)

	// 8. Notebook sink
	book, err := notebook.Open(app.cfg.Notes().Path())
	if err != nil {
		app.logger.Error("notebook unavailable: %v", err)
	} else {
		app.book = book
	}

	// 9. Event subscriptions
	app.subs = newSubscriptionManager(app)
	app.subs.setup()

	// 10. Live settings reload
	app.cfg.OnReload(app.applyReload)

	return nil
}

// initLogger builds the logger from settings. With a log file
// configured the terminal stays clean while the surface runs;
// otherwise messages go to stderr.
func (app *Application) initLogger() error {
	lc := app.cfg.Logging()

	out := io.Writer(os.Stderr)
	if lc.File != "" {
		if dir := filepath.Dir(lc.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		out = f
		app.logFile = f
	}

	app.logger = NewLogger(LoggerConfig{
		Level:  app.logLevel(),
		Output: out,
		Prefix: "cuaderno",
	})
	return nil
}

// logLevel resolves the effective log level: the command-line override
// wins over settings.
func (app *Application) logLevel() LogLevel {
	if app.opts.LogLevel != "" {
		return ParseLogLevel(app.opts.LogLevel)
	}
	return ParseLogLevel(app.cfg.Logging().Level)
}

// applyReload pushes changed settings into the running components.
func (app *Application) applyReload(path string) {
	ed := app.cfg.Editor()
	tr := app.cfg.Translation()

	app.eng.SetCoalescing(ed.HistoryCoalesceChars, ed.HistoryCoalesceDelay)
	app.eng.SetAutoTranslateDelay(tr.AutoDelay)
	app.eng.SetIndentWidth(ed.IndentWidth)
	app.logger.SetLevel(app.logLevel())

	app.logger.Info("settings reloaded from %s", path)
}

// SetBackend sets the terminal backend. Must be called before Run;
// without it Run opens the real terminal.
func (app *Application) SetBackend(b backend.Backend) error {
	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.mu.Lock()
	app.backend = b
	app.mu.Unlock()
	return nil
}

// Run starts the composer surface and blocks until it exits. The
// session's draft and language choice are persisted on the way out.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.Lock()
	if app.backend == nil {
		b, err := backend.NewTerminal()
		if err != nil {
			app.mu.Unlock()
			return &InitError{Component: "terminal", Err: err}
		}
		app.backend = b
	}

	ui := app.cfg.UI()
	r := renderer.New(app.backend, app.eng,
		renderer.WithTheme(renderer.NewTheme(ui.Theme, ui.DimAnnotations)),
		renderer.WithStatusBar(ui.ShowStatusBar),
	)
	app.renderer = r
	app.mu.Unlock()

	app.queue.Notify(r.Wake)
	app.logger.Info("composer started")

	err := r.Run()

	app.queue.Notify(nil)
	app.mu.Lock()
	app.renderer = nil
	app.mu.Unlock()
	r.Close()

	app.persistSession()
	app.logger.Info("composer stopped")
	return err
}

// Shutdown asks a running surface to exit. Safe to call from any
// goroutine; signal handlers use it.
func (app *Application) Shutdown() {
	if !app.running.Load() {
		return
	}

	app.mu.RLock()
	r := app.renderer
	app.mu.RUnlock()

	if r != nil {
		r.Stop()
	}
}

// Close releases resources. Call after Run has returned.
func (app *Application) Close() {
	if app.subs != nil {
		app.subs.teardown()
	}
	if app.draft != nil {
		app.draft.Cancel()
	}
	if app.eng != nil {
		app.eng.Close()
	}
	if app.cfg != nil {
		app.cfg.Close()
	}
	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}

// persistSession writes the composer draft and language choice so the
// next run picks them up.
func (app *Application) persistSession() {
	app.draft.Cancel()

	if err := app.state.SetDraft(app.eng.Text()); err != nil {
		app.logger.Warn("draft save failed: %v", err)
	}
	if lang := app.eng.PreferredLanguage(); lang != "" {
		if err := app.state.SetPreferredLanguage(lang); err != nil {
			app.logger.Warn("language save failed: %v", err)
		}
	}
}

// saveDraft is the draft debouncer callback.
func (app *Application) saveDraft() {
	app.draftMu.Lock()
	text := app.pendingDraft
	app.draftMu.Unlock()

	if err := app.state.SetDraft(text); err != nil {
		app.logger.Warn("draft save failed: %v", err)
	}
}

// flash shows a transient status message on the surface, if one is up.
func (app *Application) flash(msg string) {
	app.mu.RLock()
	r := app.renderer
	app.mu.RUnlock()

	if r != nil {
		r.Flash(msg)
	}
}

// flashError shows a transient error message on the surface.
func (app *Application) flashError(msg string) {
	app.mu.RLock()
	r := app.renderer
	app.mu.RUnlock()

	if r != nil {
		r.FlashError(msg)
	}
}

// IsRunning returns true if the surface is up.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Engine returns the composer engine.
func (app *Application) Engine() *engine.Engine {
	return app.eng
}

// Config returns the configuration system.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Notebook returns the notebook sink, or nil when unavailable.
func (app *Application) Notebook() *notebook.Book {
	return app.book
}
