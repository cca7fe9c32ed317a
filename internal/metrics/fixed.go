package metrics

import "github.com/rivo/uniseg"

// Fixed measures every grapheme cluster at a constant width. It exists
// for tests and headless use, where wrap math must be deterministic.
type Fixed struct {
	ClusterWidth float64
}

// NewFixed returns a Fixed provider with the given per-cluster width.
func NewFixed(width float64) *Fixed {
	return &Fixed{ClusterWidth: width}
}

// MeasureWidth returns ClusterWidth times the number of grapheme
// clusters in text.
func (f *Fixed) MeasureWidth(text string) (float64, error) {
	return f.ClusterWidth * float64(uniseg.GraphemeClusterCount(text)), nil
}
