package metrics

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Monospace measures text in fixed-width cells, the way a terminal
// renders it. Wide (CJK) runes count as two cells, combining marks as
// zero. Tabs expand to the next tab stop.
type Monospace struct {
	CellWidth float64 // width of one cell in scroll units
	TabWidth  int     // cells per tab stop
}

// NewMonospace returns a Monospace provider with one-unit cells and
// four-cell tab stops.
func NewMonospace() *Monospace {
	return &Monospace{CellWidth: 1, TabWidth: 4}
}

// MeasureWidth returns the cell width of text scaled by CellWidth.
func (m *Monospace) MeasureWidth(text string) (float64, error) {
	cell := m.CellWidth
	if cell <= 0 {
		cell = 1
	}

	if !strings.ContainsRune(text, '\t') {
		return float64(runewidth.StringWidth(text)) * cell, nil
	}

	tab := m.TabWidth
	if tab < 1 {
		tab = 4
	}

	cols := 0
	for _, r := range text {
		if r == '\t' {
			cols += tab - cols%tab
			continue
		}
		cols += runewidth.RuneWidth(r)
	}
	return float64(cols) * cell, nil
}
