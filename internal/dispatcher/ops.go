package dispatcher

import "strings"

// Edit is a computed buffer mutation: replace [Start, End) with Text,
// then select [SelStart, SelEnd). Formatting edits are atomic undo
// units; the editor checkpoints the pre-state before applying them.
type Edit struct {
	Start    int
	End      int
	Text     string
	SelStart int
	SelEnd   int

	Formatting bool
}

// IsCollapsed returns true if the resulting selection is a caret.
func (e Edit) IsCollapsed() bool {
	return e.SelStart == e.SelEnd
}

// WrapSelection builds the edit for a markdown wrap. A collapsed
// selection gets prefix+suffix inserted with the caret placed between
// them; a real selection is wrapped and re-selected including the
// markers.
func WrapSelection(text string, selStart, selEnd int, prefix, suffix string) Edit {
	selStart, selEnd = clampRange(text, selStart, selEnd)

	if selStart == selEnd {
		caret := selStart + len(prefix)
		return Edit{
			Start:      selStart,
			End:        selEnd,
			Text:       prefix + suffix,
			SelStart:   caret,
			SelEnd:     caret,
			Formatting: true,
		}
	}

	wrapped := prefix + text[selStart:selEnd] + suffix
	return Edit{
		Start:      selStart,
		End:        selEnd,
		Text:       wrapped,
		SelStart:   selStart,
		SelEnd:     selStart + len(wrapped),
		Formatting: true,
	}
}

// IndentSelection builds the edit for a Tab indent. A collapsed
// selection inserts the indent at the caret. Otherwise every line the
// selection touches is prefixed: the range is widened back to the
// start of the first selected line, each line boundary inside gets the
// indent, and the new selection covers the fully indented block.
func IndentSelection(text string, selStart, selEnd int, indent string) Edit {
	selStart, selEnd = clampRange(text, selStart, selEnd)

	if selStart == selEnd {
		caret := selStart + len(indent)
		return Edit{
			Start:      selStart,
			End:        selStart,
			Text:       indent,
			SelStart:   caret,
			SelEnd:     caret,
			Formatting: true,
		}
	}

	lineStart := strings.LastIndex(text[:selStart], "\n") + 1
	segment := text[lineStart:selEnd]
	indented := indent + strings.ReplaceAll(segment, "\n", "\n"+indent)

	return Edit{
		Start:      lineStart,
		End:        selEnd,
		Text:       indented,
		SelStart:   lineStart,
		SelEnd:     lineStart + len(indented),
		Formatting: true,
	}
}

// clampRange bounds a selection to [0, len(text)] and orders it.
func clampRange(text string, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if start > len(text) {
		start = len(text)
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		start, end = end, start
	}
	return start, end
}
