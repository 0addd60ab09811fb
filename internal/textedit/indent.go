package textedit

import "strings"

// IndentUnit is inserted by Indent and removed by Outdent.
const IndentUnit = "  "

// Indent handles the Tab key. A caret gets IndentUnit inserted at its
// position; a range indents every non-blank line it touches.
func Indent(text string, sel Selection) Edit {
	sel = sel.Normalize(UTF16Len(text))
	lo, hi := ByteOffset(text, sel.Start), ByteOffset(text, sel.End)

	if sel.Collapsed() {
		out, nlo, nhi := applySplices(text, lo, hi, []splice{{at: lo, insert: IndentUnit}})
		return finish(out, nlo, nhi)
	}

	var splices []splice
	for _, l := range byteLinesInRange(text, lo, hi) {
		if strings.TrimSpace(text[l[0]:l[1]]) == "" {
			continue
		}
		splices = append(splices, splice{at: l[0], insert: IndentUnit})
	}
	if len(splices) == 0 {
		return unchanged(text, sel)
	}
	// Keep a selection that starts at a line start anchored there.
	out, nlo, nhi := applySplices(text, lo, hi, splices)
	if splices[0].at == lo {
		nlo = lo
	}
	return finish(out, nlo, nhi)
}

// Outdent handles Shift+Tab: every touched line loses one leading tab or up
// to len(IndentUnit) leading spaces.
func Outdent(text string, sel Selection) Edit {
	sel = sel.Normalize(UTF16Len(text))
	lo, hi := ByteOffset(text, sel.Start), ByteOffset(text, sel.End)

	var splices []splice
	for _, l := range byteLinesInRange(text, lo, hi) {
		line := text[l[0]:l[1]]
		n := 0
		if strings.HasPrefix(line, "\t") {
			n = 1
		} else {
			for n < len(IndentUnit) && n < len(line) && line[n] == ' ' {
				n++
			}
		}
		if n > 0 {
			splices = append(splices, splice{at: l[0], remove: n})
		}
	}
	if len(splices) == 0 {
		return unchanged(text, sel)
	}
	out, nlo, nhi := applySplices(text, lo, hi, splices)
	return finish(out, nlo, nhi)
}
