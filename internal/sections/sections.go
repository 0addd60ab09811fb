// Package sections splits a Markdown document into a flat list of heading
// sections.
//
// Any heading line closes the section before it, whatever its level: the
// content of "# A" stops at a following "## B". Callers that want a whole
// subtree combine consecutive sections themselves.
package sections

import (
	"regexp"
	"strings"

	"github.com/e-schultz/floativerse/internal/textedit"
)

var headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)

// Section is one heading and the lines that follow it up to the next
// heading of any level.
type Section struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	// Heading is the raw heading line including its terminator.
	Heading string `json:"heading"`
	// Content holds every line strictly between this heading and the next,
	// each with its original terminator.
	Content string `json:"content"`
	// Start and End are UTF-16 offsets spanning the heading line through the
	// end of the content.
	Start int `json:"start_offset"`
	End   int `json:"end_offset"`
}

// Outline is a document split at its heading lines. Preamble is the text
// before the first heading.
type Outline struct {
	Preamble string    `json:"preamble"`
	Sections []Section `json:"sections"`
}

// String reassembles the document the outline was parsed from.
func (o Outline) String() string {
	var b strings.Builder
	b.WriteString(o.Preamble)
	for _, s := range o.Sections {
		b.WriteString(s.Heading)
		b.WriteString(s.Content)
	}
	return b.String()
}

// Parse scans text line by line. "\n" and "\r\n" terminators are both
// accepted and preserved.
func Parse(text string) Outline {
	var (
		out      Outline
		preamble strings.Builder
		content  strings.Builder
		cur      *Section
		offset   int
	)
	closeSection := func() {
		if cur == nil {
			return
		}
		cur.Content = content.String()
		cur.End = offset
		out.Sections = append(out.Sections, *cur)
		content.Reset()
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		bare := strings.TrimRight(line, "\r\n")
		if m := headingPattern.FindStringSubmatch(bare); m != nil {
			closeSection()
			cur = &Section{
				Level:   len(m[1]),
				Title:   strings.TrimSpace(m[2]),
				Heading: line,
				Start:   offset,
			}
		} else if cur != nil {
			content.WriteString(line)
		} else {
			preamble.WriteString(line)
		}
		offset += textedit.UTF16Len(line)
	}
	closeSection()
	out.Preamble = preamble.String()
	return out
}

// Extract returns the heading sections of text in document order. A document
// without headings yields nil.
func Extract(text string) []Section {
	return Parse(text).Sections
}

// FindByTitle returns the first section whose trimmed title equals title,
// ignoring case.
func FindByTitle(sections []Section, title string) (Section, bool) {
	title = strings.TrimSpace(title)
	for _, s := range sections {
		if strings.EqualFold(s.Title, title) {
			return s, true
		}
	}
	return Section{}, false
}

// FindByLevel returns every section of exactly level, in document order.
func FindByLevel(sections []Section, level int) []Section {
	var out []Section
	for _, s := range sections {
		if s.Level == level {
			out = append(out, s)
		}
	}
	return out
}
