package renderer

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// tabStop matches the monospace measurement the wrap math uses, so the
// rows drawn here line up with the visual line numbers the engine
// scrolls by.
const tabStop = 4

// Row is one visual row of the composer: the byte range
// [Start, End) of the buffer text, on 0-based logical line Line. End
// excludes the line break.
type Row struct {
	Line  int
	Start int
	End   int
}

// layoutRows splits text into visual rows wrapped at width cells.
// Wrapping is grapheme cluster aware: a cluster never splits across
// rows, so a wide cluster at a row edge wraps early. A non-positive
// width disables wrapping. Every logical line yields at least one row,
// and empty text yields one empty row.
func layoutRows(text string, width int) []Row {
	rows := make([]Row, 0, strings.Count(text, "\n")+1)

	lineStart := 0
	line := 0
	for {
		rel := strings.IndexByte(text[lineStart:], '\n')
		end := len(text)
		if rel >= 0 {
			end = lineStart + rel
		}

		rows = appendLineRows(rows, text[lineStart:end], lineStart, line, width)

		if rel < 0 {
			return rows
		}
		lineStart = end + 1
		line++
	}
}

// appendLineRows appends the visual rows of one logical line.
func appendLineRows(rows []Row, line string, base, lineNo, width int) []Row {
	if width <= 0 || line == "" {
		return append(rows, Row{Line: lineNo, Start: base, End: base + len(line)})
	}

	segStart := 0
	col := 0
	g := uniseg.NewGraphemes(line)
	for g.Next() {
		from, _ := g.Positions()
		w := clusterWidth(g.Str(), col)
		if col+w > width && from > segStart {
			rows = append(rows, Row{Line: lineNo, Start: base + segStart, End: base + from})
			segStart = from
			col = 0
		}
		col += w
	}
	return append(rows, Row{Line: lineNo, Start: base + segStart, End: base + len(line)})
}

// clusterWidth returns the cell width of one grapheme cluster when it
// starts at column col. Tabs expand to the next tab stop.
func clusterWidth(cluster string, col int) int {
	if cluster == "\t" {
		return tabStop - col%tabStop
	}
	return runewidth.StringWidth(cluster)
}

// caretCell maps a byte offset onto its visual row and cell column.
// An offset at a wrap boundary lands at the start of the later row,
// which is where a caret between the two rows is drawn.
func caretCell(rows []Row, text string, off int) (row, col int) {
	if len(rows) == 0 {
		return 0, 0
	}
	if off < 0 {
		off = 0
	}
	if off > len(text) {
		off = len(text)
	}

	row = len(rows) - 1
	for i, r := range rows {
		if off <= r.End {
			row = i
			break
		}
	}
	if row < len(rows)-1 && off == rows[row].End && rows[row+1].Start == off {
		row++
	}

	return row, cellsIn(text[rows[row].Start:off])
}

// cellsIn returns the cell width of a row fragment.
func cellsIn(s string) int {
	col := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		col += clusterWidth(g.Str(), col)
	}
	return col
}

// offsetAtCell maps a cell position on a visual row back to a byte
// offset, snapping to the start of the cluster under the cell. A
// column past the row's content maps to the row end.
func offsetAtCell(rows []Row, text string, row, col int) int {
	if len(rows) == 0 {
		return 0
	}
	if row < 0 {
		row = 0
	}
	if row >= len(rows) {
		row = len(rows) - 1
	}

	r := rows[row]
	x := 0
	g := uniseg.NewGraphemes(text[r.Start:r.End])
	for g.Next() {
		from, _ := g.Positions()
		w := clusterWidth(g.Str(), x)
		if col < x+w {
			return r.Start + from
		}
		x += w
	}
	return r.End
}
