package textedit

import (
	"regexp"
	"strconv"
	"strings"
)

// Format identifies a Markdown formatting operation.
type Format int

// Supported formats.
const (
	FormatBold Format = iota + 1
	FormatItalic
	FormatUnderline
	FormatCode
	FormatLink
	FormatImage
	FormatBullet
	FormatNumber
	FormatH1
	FormatH2
	FormatH3
	FormatH4
	FormatH5
	FormatH6
)

var formatNames = map[Format]string{
	FormatBold:      "bold",
	FormatItalic:    "italic",
	FormatUnderline: "underline",
	FormatCode:      "code",
	FormatLink:      "link",
	FormatImage:     "image",
	FormatBullet:    "bullet",
	FormatNumber:    "number",
	FormatH1:        "h1",
	FormatH2:        "h2",
	FormatH3:        "h3",
	FormatH4:        "h4",
	FormatH5:        "h5",
	FormatH6:        "h6",
}

// ParseFormat resolves a format id such as "bold" or "h2".
func ParseFormat(id string) (Format, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for f, name := range formatNames {
		if name == id {
			return f, true
		}
	}
	return 0, false
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "format(" + strconv.Itoa(int(f)) + ")"
}

// LineWise reports whether the format acts on whole lines and therefore
// needs no selection.
func (f Format) LineWise() bool {
	return f == FormatBullet || f == FormatNumber || f.HeadingLevel() > 0
}

// HeadingLevel returns 1..6 for heading formats and 0 otherwise.
func (f Format) HeadingLevel() int {
	if f >= FormatH1 && f <= FormatH6 {
		return int(f-FormatH1) + 1
	}
	return 0
}

// wrapper describes the markup placed around an inline selection.
type wrapper struct {
	open  string
	close string
}

var inlineWrappers = map[Format]wrapper{
	FormatBold:      {"**", "**"},
	FormatItalic:    {"*", "*"},
	FormatUnderline: {"<u>", "</u>"},
	FormatCode:      {"`", "`"},
	FormatLink:      {"[", "](url)"},
	FormatImage:     {"![", "](image-url)"},
}

var (
	linkRe        = regexp.MustCompile(`^\[([^\]]*)\]\(([^)]*)\)$`)
	imageRe       = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]*)\)$`)
	linkTailRe    = regexp.MustCompile(`^\]\([^)\n]*\)`)
	bulletRe      = regexp.MustCompile(`^([ \t]*)- `)
	numberRe      = regexp.MustCompile(`^([ \t]*)\d+\.[ \t]`)
	headingMarkRe = regexp.MustCompile(`^(#{1,6})[ \t]`)
)

// ApplyFormat applies or toggles f on text. Inline formats need a non-empty
// selection; line-wise formats act on the current line (or on every
// non-blank selected line for lists). Unsupported formats and empty inline
// selections return the buffer unchanged.
func ApplyFormat(text string, sel Selection, f Format) Edit {
	sel = sel.Normalize(UTF16Len(text))
	switch {
	case f == FormatBullet || f == FormatNumber:
		return toggleList(text, sel, f)
	case f.HeadingLevel() > 0:
		return toggleHeading(text, sel, f.HeadingLevel())
	}
	w, ok := inlineWrappers[f]
	if !ok || sel.Collapsed() {
		return unchanged(text, sel)
	}
	lo, hi := ByteOffset(text, sel.Start), ByteOffset(text, sel.End)
	switch f {
	case FormatLink:
		return toggleLink(text, lo, hi, w, linkRe, 1)
	case FormatImage:
		return toggleLink(text, lo, hi, w, imageRe, 2)
	}
	return toggleWrap(text, lo, hi, f, w)
}

func toggleWrap(text string, lo, hi int, f Format, w wrapper) Edit {
	selected := text[lo:hi]

	// Markup selected together with the text.
	if wrappedInside(selected, f, w) {
		inner := selected[len(w.open) : len(selected)-len(w.close)]
		return finish(text[:lo]+inner+text[hi:], lo, lo+len(inner))
	}

	// Markup sitting just outside the selection.
	if wrappedAround(text, lo, hi, f, w) {
		out := text[:lo-len(w.open)] + selected + text[hi+len(w.close):]
		nlo := lo - len(w.open)
		return finish(out, nlo, nlo+len(selected))
	}

	out := text[:lo] + w.open + selected + w.close + text[hi:]
	end := lo + len(w.open) + len(selected) + len(w.close)
	return finish(out, end, end)
}

func wrappedInside(s string, f Format, w wrapper) bool {
	if len(s) < len(w.open)+len(w.close) {
		return false
	}
	if !strings.HasPrefix(s, w.open) || !strings.HasSuffix(s, w.close) {
		return false
	}
	switch f {
	case FormatItalic:
		return leadingRun(s, '*')%2 == 1 && trailingRun(s, '*')%2 == 1
	case FormatBold:
		return len(s) >= 4
	}
	return true
}

func wrappedAround(text string, lo, hi int, f Format, w wrapper) bool {
	if lo < len(w.open) || hi+len(w.close) > len(text) {
		return false
	}
	if text[lo-len(w.open):lo] != w.open || text[hi:hi+len(w.close)] != w.close {
		return false
	}
	if f == FormatItalic {
		return trailingRun(text[:lo], '*')%2 == 1 && leadingRun(text[hi:], '*')%2 == 1
	}
	return true
}

// toggleLink wraps the selection as a link or image, or unwraps an existing
// one back to its label. prefix is the byte length of the opening markup.
func toggleLink(text string, lo, hi int, w wrapper, re *regexp.Regexp, prefix int) Edit {
	selected := text[lo:hi]

	if m := re.FindStringSubmatch(selected); m != nil && !(prefix == 1 && lo > 0 && text[lo-1] == '!') {
		label := m[1]
		out := text[:lo] + label + text[hi:]
		return finish(out, lo, lo+len(label))
	}

	if lo >= prefix && text[lo-prefix:lo] == w.open {
		isImage := prefix == 1 && lo >= 2 && text[lo-2] == '!'
		if !isImage {
			if tail := linkTailRe.FindString(text[hi:]); tail != "" {
				out := text[:lo-prefix] + selected + text[hi+len(tail):]
				nlo := lo - prefix
				return finish(out, nlo, nlo+len(selected))
			}
		}
	}

	out := text[:lo] + w.open + selected + w.close + text[hi:]
	end := lo + len(w.open) + len(selected) + len(w.close)
	return finish(out, end, end)
}

func toggleList(text string, sel Selection, f Format) Edit {
	lo, hi := ByteOffset(text, sel.Start), ByteOffset(text, sel.End)
	lines := byteLinesInRange(text, lo, hi)
	multi := len(lines) > 1

	re, marker := bulletRe, "- "
	if f == FormatNumber {
		re, marker = numberRe, "1. "
	}

	var splices []splice
	for _, l := range lines {
		line := text[l[0]:l[1]]
		if multi && strings.TrimSpace(line) == "" {
			continue
		}
		if m := re.FindStringSubmatchIndex(line); m != nil {
			indentEnd := m[3]
			splices = append(splices, splice{at: l[0] + indentEnd, remove: m[1] - indentEnd})
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		splices = append(splices, splice{at: l[0] + indent, insert: marker})
	}
	if len(splices) == 0 {
		return unchanged(text, sel)
	}
	out, nlo, nhi := applySplices(text, lo, hi, splices)
	return finish(out, nlo, nhi)
}

func toggleHeading(text string, sel Selection, level int) Edit {
	lo, hi := ByteOffset(text, sel.Start), ByteOffset(text, sel.End)
	start, end := lineBounds(text, lo)
	line := text[start:end]
	prefix := strings.Repeat("#", level) + " "

	var s splice
	if m := headingMarkRe.FindStringSubmatch(line); m != nil {
		s = splice{at: start, remove: len(m[0])}
		if len(m[1]) != level {
			s.insert = prefix
		}
	} else {
		s = splice{at: start, insert: prefix}
	}
	out, nlo, nhi := applySplices(text, lo, hi, []splice{s})
	return finish(out, nlo, nhi)
}

func leadingRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	return n
}

func trailingRun(s string, c byte) int {
	n := 0
	for n < len(s) && s[len(s)-1-n] == c {
		n++
	}
	return n
}
