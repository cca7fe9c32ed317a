package annotate

import "strings"

// State is a snapshot of the selection and its translation lifecycle.
// It is created on selection and cleared on send, explicit clear,
// selection loss, or a destructive merge. PreferredLanguage survives
// clears; it is a persistent user choice, not selection state.
type State struct {
	SelectedText      string
	TranslatedText    string
	PreferredLanguage string
	IsTranslating     bool
	SelectionStart    int
	SelectionEnd      int
}

// HasSelection returns true if a non-empty selection is tracked.
func (s State) HasSelection() bool {
	return s.SelectedText != "" && s.SelectionStart < s.SelectionEnd
}

// IsMultiLine returns true if the selection spans more than one
// logical line.
func (s State) IsMultiLine() bool {
	return strings.Contains(s.SelectedText, lineBreak)
}

// IsAnnotated returns true if the selection already carries an
// annotation delimiter.
func (s State) IsAnnotated() bool {
	return IsAnnotated(s.SelectedText)
}

// AutoTranslatable reports whether the selection qualifies for the
// debounced auto-translate preview: non-empty, single line, and not
// yet annotated. Everything else waits for an explicit command.
func (s State) AutoTranslatable() bool {
	return s.HasSelection() && !s.IsMultiLine() && !s.IsAnnotated()
}

// HasPreview returns true if a display-only translation is ready to
// confirm.
func (s State) HasPreview() bool {
	return s.TranslatedText != "" && !s.IsTranslating
}
