// Package dispatcher maps key chords onto composer commands.
//
// The chord table is flat and evaluated in a fixed priority order per
// keystroke, first match wins: navigation keys, Tab indent, redo,
// undo, explicit clear, send-as-note, the bold/italic/code markdown
// wraps, and translate-selection. Events matching nothing fall through
// to the caller's direct edit path (plain typing, backspace, enter).
//
// Formatting commands are computed as pure Edit values against the
// current text and selection, then handed to the Editor to apply. The
// editor checkpoints history before a formatting edit so each wrap or
// indent is a single undo step.
package dispatcher
