package textedit

import "strings"

// splice replaces remove bytes at byte offset at with insert.
type splice struct {
	at     int
	remove int
	insert string
}

// applySplices applies non-overlapping splices (sorted by offset) to text and
// maps the byte range lo..hi through them. An offset sitting inside a removed
// span lands right after that span's replacement; an offset equal to a pure
// insertion point moves past the inserted text.
func applySplices(text string, lo, hi int, splices []splice) (string, int, int) {
	if len(splices) == 0 {
		return text, lo, hi
	}
	var b strings.Builder
	b.Grow(len(text) + 16*len(splices))
	prev := 0
	for _, s := range splices {
		b.WriteString(text[prev:s.at])
		b.WriteString(s.insert)
		prev = s.at + s.remove
	}
	b.WriteString(text[prev:])
	return b.String(), mapOffset(lo, splices), mapOffset(hi, splices)
}

func mapOffset(p int, splices []splice) int {
	delta := 0
	for _, s := range splices {
		if p < s.at {
			break
		}
		if p >= s.at+s.remove {
			delta += len(s.insert) - s.remove
			continue
		}
		return s.at + delta + len(s.insert)
	}
	return p + delta
}

// finish converts a byte-level result back into a UTF-16 Edit.
func finish(text string, lo, hi int) Edit {
	return Edit{
		Text:      text,
		Selection: Selection{Start: UTF16Offset(text, lo), End: UTF16Offset(text, hi)},
		Changed:   true,
	}
}
