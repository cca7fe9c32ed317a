package renderer

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// annotationBlend is how far the annotation foreground is pulled
// toward the background. High enough to read as secondary, low enough
// to stay legible on 256-color terminals.
const annotationBlend = 0.45

// Theme is the resolved style set the renderer draws with.
type Theme struct {
	Name string

	// Text is the base composer style; Annotation is the translated
	// half of an annotation pair, dimmed toward the background.
	Text       tcell.Style
	Annotation tcell.Style

	// Selection highlights the selected range.
	Selection tcell.Style

	// Preview styles the floating translation preview bar.
	Preview tcell.Style

	// Status and StatusError style the status line and its error
	// flashes.
	Status      tcell.Style
	StatusError tcell.Style
}

// palette is a theme's source colors in hex form.
type palette struct {
	background string
	foreground string
	surface    string
	selection  string
	accent     string
	errorFg    string
}

func darkPalette() palette {
	return palette{
		background: "#1e1e2e",
		foreground: "#cdd6f4",
		surface:    "#313244",
		selection:  "#45475a",
		accent:     "#89b4fa",
		errorFg:    "#f38ba8",
	}
}

func lightPalette() palette {
	return palette{
		background: "#eff1f5",
		foreground: "#4c4f69",
		surface:    "#dce0e8",
		selection:  "#ccd0da",
		accent:     "#1e66f5",
		errorFg:    "#d20f39",
	}
}

// NewTheme resolves a theme by name. Unknown names fall back to the
// dark theme. With dimAnnotations false the annotation style matches
// the base text.
func NewTheme(name string, dimAnnotations bool) Theme {
	p := darkPalette()
	resolved := "dark"
	if name == "light" {
		p = lightPalette()
		resolved = "light"
	}

	bg := mustHex(p.background)
	fg := mustHex(p.foreground)
	surface := mustHex(p.surface)
	accent := mustHex(p.accent)

	text := tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(bg))

	annotation := text
	if dimAnnotations {
		annotation = text.Foreground(toTcell(dimToward(fg, bg, annotationBlend)))
	}

	status := tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(surface))

	return Theme{
		Name:        resolved,
		Text:        text,
		Annotation:  annotation,
		Selection:   tcell.StyleDefault.Foreground(toTcell(fg)).Background(toTcell(mustHex(p.selection))),
		Preview:     tcell.StyleDefault.Foreground(toTcell(accent)).Background(toTcell(surface)).Italic(true),
		Status:      status,
		StatusError: status.Foreground(toTcell(mustHex(p.errorFg))).Bold(true),
	}
}

// dimToward blends fg toward bg in Lab space, where a perceptually
// even step reads the same on dark and light palettes.
func dimToward(fg, bg colorful.Color, amount float64) colorful.Color {
	return fg.BlendLab(bg, amount).Clamped()
}

// mustHex parses a palette constant. A malformed literal falls back
// to black.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// toTcell converts a colorful color to a tcell RGB color.
func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
