// Package cursor models the composer caret and selection.
//
// Selection is an immutable value type holding an anchor and a head in
// byte offsets. The anchor is where selecting began; the head is where
// the caret sits and where typing occurs. A collapsed selection
// (anchor == head) is a plain caret. All mutating operations return new
// values, so selections can be stored, compared, and restored freely by
// the history and translation layers.
package cursor
