package app

import (
	"github.com/dmoreno/cuaderno/internal/event"
)

// subscriptionManager owns the application's event bus subscriptions:
// the couplings that cross component boundaries, like routing sent
// notes into the notebook and persisting the language choice.
type subscriptionManager struct {
	app  *Application
	subs []event.Subscription
}

// newSubscriptionManager creates a subscription manager for app.
func newSubscriptionManager(app *Application) *subscriptionManager {
	return &subscriptionManager{app: app}
}

// setup registers all application-level subscriptions.
func (sm *subscriptionManager) setup() {
	bus := sm.app.bus

	sm.subs = append(sm.subs,
		bus.SubscribeKind(event.KindNoteSubmitted, sm.handleNoteSubmitted),
		bus.SubscribeKind(event.KindTranslationCompleted, sm.handleTranslationCompleted),
		bus.SubscribeKind(event.KindTranslationFailed, sm.handleTranslationFailed),
		bus.SubscribeKind(event.KindBufferChanged, sm.handleBufferChanged),
	)
}

// teardown removes all registered subscriptions.
func (sm *subscriptionManager) teardown() {
	for _, s := range sm.subs {
		sm.app.bus.Unsubscribe(s)
	}
	sm.subs = nil
}

// handleNoteSubmitted appends a sent note to the notebook and reports
// the outcome on the status line.
func (sm *subscriptionManager) handleNoteSubmitted(e event.Event) {
	ev, ok := e.(event.NoteSubmitted)
	if !ok {
		return
	}
	app := sm.app

	log := app.logger.WithComponent("notebook")

	if app.book == nil {
		log.Error("note dropped: %v", ErrNoNotebook)
		app.flashError("note not saved: no notebook")
		return
	}

	entry, err := app.book.Append(ev.Text)
	if err != nil {
		log.Error("note append failed: %v", err)
		app.flashError("note not saved: " + err.Error())
		return
	}

	log.Debug("note %s appended to %s", entry.ID, app.book.Path())
	app.flash("note saved")
}

// handleTranslationCompleted persists the target language so future
// runs default to the user's last choice.
func (sm *subscriptionManager) handleTranslationCompleted(e event.Event) {
	ev, ok := e.(event.TranslationCompleted)
	if !ok {
		return
	}
	app := sm.app

	if ev.TargetLang == "" || ev.TargetLang == app.state.PreferredLanguage() {
		return
	}
	if err := app.state.SetPreferredLanguage(ev.TargetLang); err != nil {
		app.logger.Warn("language save failed: %v", err)
	}
}

// handleTranslationFailed records the failure. The surface has already
// shown it; the log keeps the underlying error.
func (sm *subscriptionManager) handleTranslationFailed(e event.Event) {
	ev, ok := e.(event.TranslationFailed)
	if !ok {
		return
	}
	sm.app.logger.WithComponent("translate").Warn(
		"translation to %s failed: %v", ev.TargetLang, ev.Err)
}

// handleBufferChanged schedules a debounced draft save with the
// latest composer text.
func (sm *subscriptionManager) handleBufferChanged(e event.Event) {
	ev, ok := e.(event.BufferChanged)
	if !ok {
		return
	}
	app := sm.app

	app.draftMu.Lock()
	app.pendingDraft = ev.Text
	app.draftMu.Unlock()
	app.draft.Call()
}
