// Package textedit implements the pure text transformations behind the note
// editor: line lookup, Markdown formatting toggles, indentation, slash-command
// detection and caret placement.
//
// Every offset accepted or returned by this package is measured in UTF-16 code
// units, matching the selectionStart/selectionEnd of a browser text widget.
// Conversion to Go byte offsets happens at the package boundary.
package textedit

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// Selection is a caret or a selected range inside a buffer.
type Selection struct {
	Start int `json:"selection_start"`
	End   int `json:"selection_end"`
}

// Caret returns a collapsed selection at offset.
func Caret(offset int) Selection {
	return Selection{Start: offset, End: offset}
}

// Collapsed reports whether the selection is a bare caret.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Normalize orders the bounds and clamps them to [0, length].
func (s Selection) Normalize(length int) Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	s.Start = clamp(s.Start, 0, length)
	s.End = clamp(s.End, 0, length)
	return s
}

// Edit is the result of a transformation: the new buffer and where the
// selection should be placed afterwards.
type Edit struct {
	Text      string    `json:"text"`
	Selection Selection `json:"selection"`
	Changed   bool      `json:"changed"`
}

func unchanged(text string, sel Selection) Edit {
	return Edit{Text: text, Selection: sel}
}

// Line is a view of one line of a buffer, excluding its terminator.
type Line struct {
	Text  string `json:"text"`
	Start int    `json:"line_start"`
	End   int    `json:"line_end"`
}

// UTF16Len returns the length of text in UTF-16 code units.
func UTF16Len(text string) int {
	n := 0
	for _, r := range text {
		n += utf16.RuneLen(r)
	}
	return n
}

// ByteOffset converts a UTF-16 offset into a byte offset into text. Offsets
// beyond the end clamp to len(text); an offset that splits a surrogate pair
// snaps to the start of that rune.
func ByteOffset(text string, u16 int) int {
	if u16 <= 0 {
		return 0
	}
	units := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		w := utf16.RuneLen(r)
		if w < 0 {
			w = 1
		}
		if units+w > u16 {
			return i
		}
		units += w
		i += size
		if units == u16 {
			return i
		}
	}
	return len(text)
}

// UTF16Offset converts a byte offset into text into UTF-16 code units.
func UTF16Offset(text string, byteOff int) int {
	byteOff = clamp(byteOff, 0, len(text))
	return UTF16Len(text[:byteOff])
}

// CurrentLine returns the line containing cursor. It reports false when no
// cursor is available (a negative offset).
func CurrentLine(text string, cursor int) (Line, bool) {
	if cursor < 0 {
		return Line{}, false
	}
	start, end := lineBounds(text, ByteOffset(text, cursor))
	return Line{
		Text:  text[start:end],
		Start: UTF16Offset(text, start),
		End:   UTF16Offset(text, end),
	}, true
}

// LinesInRange returns every line touched by sel, in document order.
func LinesInRange(text string, sel Selection) []Line {
	sel = sel.Normalize(UTF16Len(text))
	lo, hi := ByteOffset(text, sel.Start), ByteOffset(text, sel.End)
	var out []Line
	for _, b := range byteLinesInRange(text, lo, hi) {
		out = append(out, Line{
			Text:  text[b[0]:b[1]],
			Start: UTF16Offset(text, b[0]),
			End:   UTF16Offset(text, b[1]),
		})
	}
	return out
}

// lineBounds returns the byte bounds of the line holding byte offset pos.
func lineBounds(text string, pos int) (int, int) {
	pos = clamp(pos, 0, len(text))
	start := 0
	if pos > 0 {
		start = strings.LastIndexByte(text[:pos], '\n') + 1
	}
	end := len(text)
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		end = pos + i
	}
	return start, end
}

// byteLinesInRange lists [start,end) byte bounds of the lines spanned by the
// byte range lo..hi. A range ending right after a newline does not pull in
// the following line.
func byteLinesInRange(text string, lo, hi int) [][2]int {
	if hi > lo && text[hi-1] == '\n' {
		hi--
	}
	var out [][2]int
	pos := lo
	for {
		s, e := lineBounds(text, pos)
		out = append(out, [2]int{s, e})
		if e >= hi || e >= len(text) {
			return out
		}
		pos = e + 1
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
