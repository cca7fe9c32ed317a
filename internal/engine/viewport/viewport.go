// Package viewport keeps the caret inside the visible scroll window.
package viewport

import (
	"math"
	"sync"
)

// marginRatio is the share of visible lines kept clear above and below
// the caret. A 20-line viewport keeps the caret 6 lines from each edge.
const marginRatio = 0.3

// noiseThreshold is the scroll delta, in scroll units, below which an
// unforced scroll is skipped. Sub-pixel wrap recomputation otherwise
// produces visible jitter.
const noiseThreshold = 2.0

// Controller owns the vertical scroll state of one composer surface.
// Positions are in the host's scroll units (pixels for a text area,
// cells for a terminal). All methods are safe for concurrent use.
type Controller struct {
	mu            sync.RWMutex
	lineHeight    float64
	height        float64
	scrollTop     float64
	lastSource    ScrollSource
	selfScrolling bool
}

// NewController creates a controller for a surface of the given height
// with the given visual line height, both in scroll units.
func NewController(lineHeight, height float64) *Controller {
	c := &Controller{lastSource: SourceNone}
	c.setGeometry(lineHeight, height)
	return c
}

// Resize updates the surface height.
func (c *Controller) Resize(height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setGeometry(c.lineHeight, height)
}

// SetLineHeight updates the visual line height.
func (c *Controller) SetLineHeight(lineHeight float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setGeometry(lineHeight, c.height)
}

func (c *Controller) setGeometry(lineHeight, height float64) {
	if lineHeight <= 0 {
		lineHeight = 1
	}
	if height < lineHeight {
		height = lineHeight
	}
	c.lineHeight = lineHeight
	c.height = height
}

// LineHeight returns the visual line height in scroll units.
func (c *Controller) LineHeight() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lineHeight
}

// ScrollTop returns the current scroll offset in scroll units.
func (c *Controller) ScrollTop() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scrollTop
}

// VisibleLines returns how many whole visual lines fit the surface.
func (c *Controller) VisibleLines() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visibleLinesLocked()
}

func (c *Controller) visibleLinesLocked() int {
	n := int(math.Floor(c.height / c.lineHeight))
	if n < 1 {
		return 1
	}
	return n
}

// Margin returns the caret margin in visual lines.
func (c *Controller) Margin() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return marginLines(c.visibleLinesLocked())
}

func marginLines(visibleLines int) int {
	return int(math.Floor(float64(visibleLines) * marginRatio))
}

// LastSource returns the source of the most recent scroll change.
func (c *Controller) LastSource() ScrollSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSource
}

// IsSelfScrolling reports whether a programmatic scroll is in flight,
// meaning the next observed scroll event is the controller's own echo.
func (c *Controller) IsSelfScrolling() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selfScrolling
}

// EnsureVisible scrolls so the caret's visual line sits at least the
// margin away from both edges. visualLine is 1-based, totalLines is the
// document's visual line count. The scroll is applied only when force
// is set or the movement exceeds the noise threshold.
//
// Returns the resulting scroll offset and whether it changed.
func (c *Controller) EnsureVisible(visualLine, totalLines int, force bool) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := c.visibleLinesLocked()
	margin := marginLines(visible)
	current := int(math.Floor(c.scrollTop / c.lineHeight))

	target := current
	switch {
	case visualLine-current < margin:
		target = visualLine - margin
		if target < 0 {
			target = 0
		}
	case current+visible-visualLine < margin:
		target = visualLine - visible + margin
		if limit := totalLines - visible; target > limit {
			target = limit
		}
		if target < 0 {
			target = 0
		}
	}

	newTop := float64(target) * c.lineHeight
	if !force && math.Abs(newTop-c.scrollTop) <= noiseThreshold {
		return c.scrollTop, false
	}
	if newTop == c.scrollTop {
		return c.scrollTop, false
	}

	c.scrollTop = newTop
	c.lastSource = SourceProgrammatic
	c.selfScrolling = true
	return c.scrollTop, true
}

// ObserveScroll records a scroll position reported by the host surface.
// It returns true when the change is user-driven and listeners should
// react, and false when it is the echo of the controller's own scroll.
// The self-scrolling flag is consumed by the first observation.
func (c *Controller) ObserveScroll(top float64, source ScrollSource) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if top < 0 {
		top = 0
	}
	c.scrollTop = top

	if c.selfScrolling {
		c.selfScrolling = false
		return false
	}

	c.lastSource = source
	return true
}

// EndTick clears the self-scrolling flag between host event ticks,
// covering the case where the scroll was absorbed by the noise
// threshold and no echo ever arrived to consume it.
func (c *Controller) EndTick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selfScrolling = false
}
