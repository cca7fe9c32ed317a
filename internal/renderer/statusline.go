package renderer

import (
	"fmt"
	"strings"
)

// statusState is everything the status line shows, gathered once per
// frame.
type statusState struct {
	Language    string
	Line        int // 1-based
	Column      int // 1-based
	VisualLine  int // 1-based
	VisualTotal int
	CanUndo     bool
	Translating bool
	Preview     bool
	Flash       string
	FlashError  bool
}

// buildStatus renders the status state into left-aligned and
// right-aligned halves. A flash replaces the left half until the next
// key press.
func buildStatus(s statusState) (left, right string) {
	switch {
	case s.Flash != "":
		left = s.Flash
	default:
		parts := []string{"Cuaderno"}
		if s.Language != "" {
			parts = append(parts, s.Language)
		}
		if s.Translating {
			parts = append(parts, "translating…")
		} else if s.Preview {
			parts = append(parts, "^Y confirm · Esc dismiss")
		}
		left = strings.Join(parts, " · ")
	}

	right = fmt.Sprintf("Ln %d, Col %d", s.Line, s.Column)
	if s.VisualTotal > 1 {
		right += fmt.Sprintf("  %d/%d", s.VisualLine, s.VisualTotal)
	}
	if s.CanUndo {
		right += "  ^Z"
	}
	return left, right
}
