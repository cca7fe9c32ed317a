package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmoreno/cuaderno/internal/event"
	"github.com/dmoreno/cuaderno/internal/input/key"
	"github.com/dmoreno/cuaderno/internal/renderer/backend"
)

// writeSettings drops a settings.toml into dir pointing everything at
// temp locations, with translation disabled so no provider is built.
func writeSettings(t *testing.T, dir string) {
	t.Helper()
	body := fmt.Sprintf(`[translation]
enabled = false

[notes]
dir = %q

[logging]
level = "error"
file = %q
`, filepath.Join(dir, "notes"), filepath.Join(dir, "cuaderno.log"))

	if err := os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, opts Options) *Application {
	t.Helper()

	if opts.ConfigDir == "" {
		dir := t.TempDir()
		writeSettings(t, dir)
		opts.ConfigDir = dir
	}

	app, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

// waitForSurface blocks until Run has built the renderer.
func waitForSurface(t *testing.T, app *Application) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		app.mu.RLock()
		r := app.renderer
		app.mu.RUnlock()
		if r != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("surface never came up")
}

func TestNew_BootstrapsComponents(t *testing.T) {
	app := newTestApp(t, Options{})

	if app.Engine() == nil {
		t.Error("Engine() = nil")
	}
	if app.Config() == nil {
		t.Error("Config() = nil")
	}
	if app.Logger() == nil {
		t.Error("Logger() = nil")
	}
	if app.Notebook() == nil {
		t.Error("Notebook() = nil")
	}
	if app.IsRunning() {
		t.Error("IsRunning() = true before Run")
	}

	if got := app.Engine().PreferredLanguage(); got != "en" {
		t.Errorf("PreferredLanguage() = %q, want the configured default", got)
	}
}

func TestNew_RestoresDraftAndLanguage(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir)
	seed := `{"composer":{"draft":"hola sin enviar"},"translation":{"preferredLanguage":"de"}}`
	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte(seed), 0o600); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(t, Options{ConfigDir: dir})

	if got := app.Engine().Text(); got != "hola sin enviar" {
		t.Errorf("Text() = %q, want the saved draft", got)
	}
	if got := app.Engine().PreferredLanguage(); got != "de" {
		t.Errorf("PreferredLanguage() = %q, want the persisted choice", got)
	}
}

func TestLogLevelFlagOverridesSettings(t *testing.T) {
	app := newTestApp(t, Options{LogLevel: "debug"})

	if got := app.logLevel(); got != LogLevelDebug {
		t.Errorf("logLevel() = %v, want LogLevelDebug despite settings", got)
	}
}

func TestRun_QuitPersistsSession(t *testing.T) {
	app := newTestApp(t, Options{})
	be := backend.NewNull(40, 8)
	if err := app.SetBackend(be); err != nil {
		t.Fatalf("SetBackend() error = %v", err)
	}

	app.Engine().SetText("borrador pendiente")
	be.Post(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent('q', key.ModCtrl)})

	if err := app.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if be.Frames() == 0 {
		t.Error("Frames() = 0, want at least one repaint")
	}

	st, err := OpenState(filepath.Join(app.Config().ConfigDir(), "state.json"))
	if err != nil {
		t.Fatalf("OpenState() error = %v", err)
	}
	if got := st.Draft(); got != "borrador pendiente" {
		t.Errorf("persisted draft = %q, want the composer text", got)
	}
}

func TestRun_NoteFlow(t *testing.T) {
	app := newTestApp(t, Options{})
	be := backend.NewNull(40, 8)
	if err := app.SetBackend(be); err != nil {
		t.Fatalf("SetBackend() error = %v", err)
	}

	for _, c := range "hola" {
		be.Post(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent(c, key.ModNone)})
	}
	be.Post(backend.Event{Type: backend.EventKey, Key: key.NewSpecialEvent(key.KeyEnter, key.ModCtrl)})
	be.Post(backend.Event{Type: backend.EventKey, Key: key.NewRuneEvent('q', key.ModCtrl)})

	if err := app.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	entries, err := app.Notebook().Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "hola" {
		t.Fatalf("Entries() = %+v, want one entry %q", entries, "hola")
	}

	if got := app.Engine().Text(); got != "" {
		t.Errorf("Text() = %q, want empty after send", got)
	}
	if !strings.Contains(be.Row(7), "note saved") {
		t.Errorf("status row = %q, want the save flash", be.Row(7))
	}

	st, err := OpenState(filepath.Join(app.Config().ConfigDir(), "state.json"))
	if err != nil {
		t.Fatalf("OpenState() error = %v", err)
	}
	if got := st.Draft(); got != "" {
		t.Errorf("persisted draft = %q, want empty after send", got)
	}
}

func TestRun_SecondRunAndShutdown(t *testing.T) {
	app := newTestApp(t, Options{})
	be := backend.NewNull(40, 8)
	if err := app.SetBackend(be); err != nil {
		t.Fatalf("SetBackend() error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- app.Run() }()
	waitForSurface(t, app)

	if err := app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
	if err := app.SetBackend(be); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("SetBackend() while running error = %v, want ErrAlreadyRunning", err)
	}

	app.Shutdown()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}

	if app.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestShutdown_NotRunningIsNoOp(t *testing.T) {
	app := newTestApp(t, Options{})
	app.Shutdown()
}

func TestNoteSubmitted_AppendsToNotebook(t *testing.T) {
	app := newTestApp(t, Options{})

	app.Engine().SetText("mi nota de clase")
	if err := app.Engine().SubmitNote(); err != nil {
		t.Fatalf("SubmitNote() error = %v", err)
	}

	entries, err := app.Notebook().Entries()
	if err != nil {
		t.Fatalf("Entries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Text != "mi nota de clase" {
		t.Fatalf("Entries() = %+v, want the submitted note", entries)
	}
}

func TestTranslationCompleted_PersistsLanguage(t *testing.T) {
	app := newTestApp(t, Options{})

	app.bus.Publish(event.TranslationCompleted{TargetLang: "fr", Translated: "the cat"})

	st, err := OpenState(filepath.Join(app.Config().ConfigDir(), "state.json"))
	if err != nil {
		t.Fatalf("OpenState() error = %v", err)
	}
	if got := st.PreferredLanguage(); got != "fr" {
		t.Errorf("persisted language = %q, want %q", got, "fr")
	}
}

func TestBufferChanged_SavesDraftOnFlush(t *testing.T) {
	app := newTestApp(t, Options{})

	app.bus.Publish(event.BufferChanged{Text: "apunte a medias"})
	app.draft.Flush()

	if got := app.state.Draft(); got != "apunte a medias" {
		t.Errorf("Draft() = %q, want the flushed text", got)
	}
}

func TestApplyReload_UpdatesLogLevel(t *testing.T) {
	app := newTestApp(t, Options{})

	if err := app.Config().Set("logging.level", "debug"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	app.applyReload(app.Config().File())

	app.logger.mu.Lock()
	level := app.logger.level
	app.logger.mu.Unlock()
	if level != LogLevelDebug {
		t.Errorf("logger level = %v after reload, want LogLevelDebug", level)
	}
}
