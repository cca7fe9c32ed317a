package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewControllerClampsGeometry(t *testing.T) {
	c := NewController(0, -5)

	if c.LineHeight() != 1 {
		t.Errorf("LineHeight() = %v, want 1", c.LineHeight())
	}

	if c.VisibleLines() != 1 {
		t.Errorf("VisibleLines() = %d, want 1", c.VisibleLines())
	}
}

func TestVisibleLinesAndMargin(t *testing.T) {
	c := NewController(20, 200)

	if got := c.VisibleLines(); got != 10 {
		t.Errorf("VisibleLines() = %d, want 10", got)
	}

	if got := c.Margin(); got != 3 {
		t.Errorf("Margin() = %d, want 3", got)
	}

	c.Resize(400)
	if got := c.VisibleLines(); got != 20 {
		t.Errorf("VisibleLines() after resize = %d, want 20", got)
	}

	if got := c.Margin(); got != 6 {
		t.Errorf("Margin() after resize = %d, want 6", got)
	}
}

func TestEnsureVisibleNoMoveInComfortZone(t *testing.T) {
	c := NewController(10, 100) // 10 visible lines, margin 3

	top, moved := c.EnsureVisible(5, 50, false)
	if moved {
		t.Errorf("caret in comfort zone should not scroll, got top %v", top)
	}
}

func TestEnsureVisibleScrollsDown(t *testing.T) {
	c := NewController(10, 100)

	top, moved := c.EnsureVisible(9, 50, false)
	if !moved {
		t.Fatal("caret near bottom edge should scroll")
	}

	// target = caret - visible + margin = 9 - 10 + 3 = 2
	if top != 20 {
		t.Errorf("scrollTop = %v, want 20", top)
	}
}

func TestEnsureVisibleScrollsUp(t *testing.T) {
	c := NewController(10, 100)
	c.ObserveScroll(200, SourceUser)

	top, moved := c.EnsureVisible(21, 50, false)
	if !moved {
		t.Fatal("caret near top edge should scroll")
	}

	// target = caret - margin = 21 - 3 = 18
	if top != 180 {
		t.Errorf("scrollTop = %v, want 180", top)
	}
}

func TestEnsureVisibleClampsAtTop(t *testing.T) {
	c := NewController(10, 100)
	c.ObserveScroll(40, SourceUser)

	top, moved := c.EnsureVisible(1, 50, false)
	if !moved {
		t.Fatal("caret at document start should scroll to top")
	}

	if top != 0 {
		t.Errorf("scrollTop = %v, want 0", top)
	}
}

func TestEnsureVisibleClampsAtBottom(t *testing.T) {
	c := NewController(10, 100)

	top, moved := c.EnsureVisible(11, 12, false)
	if !moved {
		t.Fatal("caret at document end should scroll")
	}

	// raw target 11-10+3 = 4 clamps to total-visible = 2
	if top != 20 {
		t.Errorf("scrollTop = %v, want 20", top)
	}
}

func TestEnsureVisibleShortDocument(t *testing.T) {
	c := NewController(10, 100)

	// 9 lines in a 10-line viewport: nothing to scroll
	_, moved := c.EnsureVisible(8, 9, false)
	if moved {
		t.Error("document shorter than viewport should never scroll")
	}
}

func TestEnsureVisibleNoiseThreshold(t *testing.T) {
	c := NewController(1, 10) // cell-sized lines, threshold covers 2 cells
	c.ObserveScroll(5, SourceUser)

	// target = 6 - 3 = 3, delta = 2: within noise, skipped
	_, moved := c.EnsureVisible(6, 50, false)
	if moved {
		t.Error("sub-threshold scroll should be skipped without force")
	}

	top, moved := c.EnsureVisible(6, 50, true)
	if !moved {
		t.Fatal("forced scroll must apply regardless of threshold")
	}

	if top != 3 {
		t.Errorf("scrollTop = %v, want 3", top)
	}
}

func TestSelfScrollEcho(t *testing.T) {
	c := NewController(10, 100)

	top, moved := c.EnsureVisible(9, 50, false)
	if !moved {
		t.Fatal("expected a programmatic scroll")
	}

	if !c.IsSelfScrolling() {
		t.Error("controller should report self-scrolling after a programmatic move")
	}

	if c.LastSource() != SourceProgrammatic {
		t.Errorf("LastSource() = %v, want programmatic", c.LastSource())
	}

	// The host echoes the scroll back: must not count as user-driven.
	if c.ObserveScroll(top, SourceProgrammatic) {
		t.Error("echo of own scroll should be ignored")
	}

	if c.IsSelfScrolling() {
		t.Error("echo should consume the self-scrolling flag")
	}

	// A later wheel scroll is user-driven again.
	if !c.ObserveScroll(123, SourceWheel) {
		t.Error("wheel scroll should be reported to listeners")
	}

	if c.LastSource() != SourceWheel {
		t.Errorf("LastSource() = %v, want wheel", c.LastSource())
	}
}

func TestEndTickClearsSelfScrolling(t *testing.T) {
	c := NewController(10, 100)

	_, moved := c.EnsureVisible(9, 50, false)
	if !moved {
		t.Fatal("expected a programmatic scroll")
	}

	c.EndTick()
	if c.IsSelfScrolling() {
		t.Error("EndTick should clear the self-scrolling flag")
	}
}

func TestScrollSourceString(t *testing.T) {
	tests := []struct {
		source ScrollSource
		want   string
	}{
		{SourceNone, "none"},
		{SourceUser, "user"},
		{SourceWheel, "wheel"},
		{SourceKeyboard, "keyboard"},
		{SourceProgrammatic, "programmatic"},
	}

	for _, tt := range tests {
		if got := tt.source.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestProperty_MarginInvariant(t *testing.T) {
	// After a forced ensure-visible pass the caret sits at least the
	// margin from both edges, whenever the document is taller than the
	// viewport and the caret is far enough from the document ends for
	// the margins to be satisfiable.
	rapid.Check(t, func(rt *rapid.T) {
		const lineHeight = 10.0
		visible := rapid.IntRange(4, 50).Draw(rt, "visible")
		total := rapid.IntRange(visible+1, 400).Draw(rt, "total")
		margin := marginLines(visible)
		caret := rapid.IntRange(margin, total-margin).Draw(rt, "caret")
		startTop := rapid.IntRange(0, total*int(lineHeight)).Draw(rt, "startTop")

		c := NewController(lineHeight, float64(visible)*lineHeight)
		c.ObserveScroll(float64(startTop), SourceUser)

		top, _ := c.EnsureVisible(caret, total, true)
		scrollLine := int(math.Floor(top / lineHeight))

		require.GreaterOrEqual(t, caret-scrollLine, margin,
			"caret too close to top edge")
		require.LessOrEqual(t, caret-scrollLine, visible-margin,
			"caret too close to bottom edge")
	})
}

func TestProperty_ScrollTopInDocumentBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		const lineHeight = 10.0
		visible := rapid.IntRange(1, 50).Draw(rt, "visible")
		total := rapid.IntRange(1, 400).Draw(rt, "total")
		caret := rapid.IntRange(1, total).Draw(rt, "caret")
		startTop := rapid.IntRange(0, max(0, total-visible)*int(lineHeight)).Draw(rt, "startTop")

		c := NewController(lineHeight, float64(visible)*lineHeight)
		c.ObserveScroll(float64(startTop), SourceUser)

		top, moved := c.EnsureVisible(caret, total, true)

		require.GreaterOrEqual(t, top, 0.0, "scrollTop must never go negative")
		if moved {
			maxTop := float64(max(0, total-visible)) * lineHeight
			require.LessOrEqual(t, top, maxTop,
				"an applied scroll must stay within the document")
		}
	})
}
