// Package annotate tracks the current selection and turns it into
// original/translation annotation pairs.
//
// An annotation pair is a single buffer line of the form
//
//	Hola :: Hello
//
// where " :: " is the persisted delimiter and the left-hand side is
// always the authoritative original. Re-translating an annotated line
// re-derives from that original, so repeated translations never
// compound.
//
// Two translation paths exist:
//
//   - Auto preview: a single-line, unannotated selection starts a
//     debounced service call whose result is held for display only.
//     The buffer is untouched until the user confirms the merge.
//   - Explicit merge: multi-line or already-annotated selections are
//     translated in one service call (originals joined by line
//     breaks) and merged back destructively, line by line, preserving
//     blanks.
//
// Service calls are asynchronous. Each is tagged with the selection
// generation at launch; a result arriving after the selection changed
// is discarded rather than applied to the wrong text.
package annotate
