package textedit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorCoordinates(t *testing.T) {
	m := Metrics{
		CharWidth:   10,
		LineHeight:  20,
		Width:       120,
		PaddingLeft: 10,
		TabSize:     4,
		MenuOffset:  20,
	}
	tests := []struct {
		name   string
		text   string
		cursor int
		want   Point
	}{
		{"first line", "abc", 3, Point{Top: 20, Left: 40}},
		{"second line", "ab\ncd", 5, Point{Top: 40, Left: 30}},
		{"soft wrap", strings.Repeat("a", 12), 12, Point{Top: 40, Left: 30}},
		{"wide rune", "中", 1, Point{Top: 20, Left: 30}},
		{"tab stop", "\tx", 2, Point{Top: 20, Left: 60}},
		{"tab wraps to full width", strings.Repeat("a", 9) + "\tx", 11, Point{Top: 40, Left: 60}},
		{"start of buffer", "abc", 0, Point{Top: 20, Left: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CursorCoordinates(tt.text, tt.cursor, m))
		})
	}
}

func TestCursorCoordinatesDeterministic(t *testing.T) {
	text := "# Title\nsome body text that is long enough to wrap around"
	m := DefaultMetrics()
	assert.Equal(t, CursorCoordinates(text, 40, m), CursorCoordinates(text, 40, m))
}
