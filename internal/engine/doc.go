// Package engine provides the text editing core behind the cuaderno
// note composer.
//
// The engine package is the facade over the composer's editing
// subsystems, combining the buffer, selection, coalesced undo history,
// caret-tracking scroll state, and the selection translation session
// into one command surface the host drives.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - buffer: UTF-8 text store with line indexing and grapheme stepping
//   - cursor: selection value type (anchor + head)
//   - history: checkpoint stack plus the coalescing recorder
//   - visual: wrapped (visual) line math over a metrics provider
//   - viewport: scroll margin policy and self-scroll echo handling
//   - annotate: inline translation pairs and the translation session
//
// Key chords are resolved by internal/dispatcher; notifications reach
// the host through internal/event.
//
// # Event model
//
// All mutations run synchronously on the calling goroutine and are
// serialized by one mutex. Work that depends on post-event selection
// state, in particular caret visibility scrolling, is posted to a
// deferred queue; the host drains it once per input tick:
//
//	eng := engine.New(engine.WithTranslator(svc))
//	for ev := range events {
//		eng.HandleKey(ev)
//		eng.Tick() // applies deferred caret/scroll work
//	}
//
// Hosts render from bus events (BufferChanged, SelectionChanged,
// ScrollChanged, Translation*) and never mutate state except through
// the engine.
//
// # Basic usage
//
//	eng := engine.New(engine.WithContent("hola"))
//
//	eng.HandleKey(key.NewRuneEvent('!', key.ModNone))
//	text := eng.Text() // "hola!"
//
//	eng.Undo() // back to "hola"
//
// # Translation
//
// Selecting a single unannotated line arms a debounced preview
// translation; confirming merges it into the buffer as an annotation
// pair joined by " :: ". Multi-line or already annotated selections
// translate destructively on the explicit command:
//
//	eng.HandleSelectionChange(0, 4)
//	eng.TranslateSelection("en") // preview for display
//	eng.ConfirmTranslation()     // buffer now "hola :: hello"
//
// Translation failures publish TranslationFailed and leave the buffer
// untouched; nothing in this package is fatal to an engine instance.
package engine
