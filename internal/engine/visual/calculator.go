// Package visual computes wrapped (visual) line numbers for the composer.
package visual

import (
	"math"
	"strings"

	"github.com/dmoreno/cuaderno/internal/metrics"
)

// Calculator converts byte offsets into 1-based visual line numbers,
// accounting for soft wrap at the viewport width. Widths come from a
// metrics.Provider so the math matches the host surface exactly.
//
// Every call re-measures from the top of the text. That is O(lines) per
// keystroke and intentionally uncached: matching the surface's actual
// wrap behavior matters more than shaving measurements at composer sizes.
type Calculator struct {
	provider metrics.Provider
}

// New creates a Calculator backed by the given provider.
// A nil provider is allowed; every line then counts as unwrapped.
func New(provider metrics.Provider) *Calculator {
	return &Calculator{provider: provider}
}

// SetProvider swaps the measurement provider.
func (c *Calculator) SetProvider(p metrics.Provider) {
	c.provider = p
}

// LineOf returns the 1-based visual line containing offset.
// Offsets outside [0, len(text)] clamp to the nearest end.
func (c *Calculator) LineOf(text string, offset int, viewportWidth float64) int {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	visual := 0
	for _, line := range strings.Split(text[:offset], "\n") {
		visual += c.wrappedCount(line, viewportWidth)
	}
	return visual
}

// Total returns the total number of visual lines in text, always >= 1.
func (c *Calculator) Total(text string, viewportWidth float64) int {
	visual := 0
	for _, line := range strings.Split(text, "\n") {
		visual += c.wrappedCount(line, viewportWidth)
	}
	return visual
}

// wrappedCount returns how many visual rows one logical line occupies.
// Measurement failures fall back to a single row: caret tracking must
// keep working while the surface is not ready to measure.
func (c *Calculator) wrappedCount(line string, viewportWidth float64) int {
	if c.provider == nil || viewportWidth <= 0 {
		return 1
	}

	width, err := c.provider.MeasureWidth(line)
	if err != nil || width <= 0 {
		return 1
	}

	wrapped := int(math.Ceil(width / viewportWidth))
	if wrapped < 1 {
		return 1
	}
	return wrapped
}
