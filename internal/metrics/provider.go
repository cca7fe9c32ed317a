// Package metrics measures rendered text width for wrap computation.
//
// The visual line calculator asks a Provider how wide a logical line is
// in the same units the host surface scrolls in. Hosts supply whichever
// provider matches their rendering: terminal cells for the TUI, fixed
// widths for tests.
package metrics

import "errors"

// ErrUnavailable is returned when a provider cannot measure text,
// typically because the host surface is not ready yet.
var ErrUnavailable = errors.New("metrics: measurement unavailable")

// Provider measures the rendered width of a single line of text.
// The unit must match the host's scroll unit (pixels or cells).
type Provider interface {
	MeasureWidth(text string) (float64, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(text string) (float64, error)

// MeasureWidth calls f.
func (f ProviderFunc) MeasureWidth(text string) (float64, error) {
	return f(text)
}

// Surface is a Provider that also knows the live geometry of the text
// area it measures for. The engine re-queries it on resize so wrap and
// scroll math track the real surface, not a stale copy.
type Surface interface {
	Provider
	ViewportWidth() float64
	ViewportHeight() float64
}

// StaticSurface wraps a Provider with fixed geometry, for tests and
// headless hosts.
type StaticSurface struct {
	Provider
	Width  float64
	Height float64
}

// ViewportWidth returns the fixed width.
func (s StaticSurface) ViewportWidth() float64 { return s.Width }

// ViewportHeight returns the fixed height.
func (s StaticSurface) ViewportHeight() float64 { return s.Height }
