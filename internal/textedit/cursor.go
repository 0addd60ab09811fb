package textedit

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Metrics describes the rendered box of the text widget in pixels. The
// widget is assumed to use a monospace font where a narrow cell is CharWidth
// wide and wide runes (CJK, emoji) take two cells.
type Metrics struct {
	CharWidth   float64 `json:"char_width"`
	LineHeight  float64 `json:"line_height"`
	Width       float64 `json:"width"`
	PaddingTop  float64 `json:"padding_top"`
	PaddingLeft float64 `json:"padding_left"`
	TabSize     int     `json:"tab_size"`
	MenuOffset  float64 `json:"menu_offset"`
}

// DefaultMetrics matches a 14px monospace textarea with the command menu
// placed 20px under the caret.
func DefaultMetrics() Metrics {
	return Metrics{
		CharWidth:   8.4,
		LineHeight:  20,
		Width:       720,
		PaddingTop:  16,
		PaddingLeft: 16,
		TabSize:     4,
		MenuOffset:  20,
	}
}

// Point is a widget-relative pixel position.
type Point struct {
	Top  float64 `json:"top"`
	Left float64 `json:"left"`
}

// CursorCoordinates returns where a floating menu should be placed for the
// caret at cursor. Text before the caret is soft-wrapped at the cell width
// of the content box, the way a pre-wrap textarea breaks long lines.
func CursorCoordinates(text string, cursor int, m Metrics) Point {
	if m.CharWidth <= 0 {
		m.CharWidth = DefaultMetrics().CharWidth
	}
	if m.TabSize <= 0 {
		m.TabSize = DefaultMetrics().TabSize
	}
	cols := 0
	if inner := m.Width - 2*m.PaddingLeft; inner > 0 {
		cols = int(inner / m.CharWidth)
	}

	before := text[:ByteOffset(text, max(cursor, 0))]
	row, col := 0, 0
	for i, line := range strings.Split(before, "\n") {
		if i > 0 {
			row++
		}
		col = 0
		for _, r := range line {
			w := runewidth.RuneWidth(r)
			if r == '\t' {
				w = m.TabSize - col%m.TabSize
			}
			if cols > 0 && col+w > cols {
				row++
				col = 0
				if r == '\t' {
					w = m.TabSize
				}
			}
			col += w
		}
	}

	return Point{
		Top:  m.PaddingTop + float64(row)*m.LineHeight + m.MenuOffset,
		Left: m.PaddingLeft + float64(col)*m.CharWidth,
	}
}
