// Package docctx turns an in-editor AI command into a prompt enriched with
// the document sections it refers to, and splices the answer back into the
// note.
package docctx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/e-schultz/floativerse/internal/sections"
)

// ContextMarker opens every prompt that carries document context. The
// generation backend switches its system instruction on this exact string.
const ContextMarker = "DOCUMENT CONTEXT:"

const (
	sectionSeparator = "\n---\n"
	queryHeader      = "\n\nUSER QUERY:\n"
)

var (
	levelRefPattern = regexp.MustCompile(`(?i)\b(h[1-6]|header[1-6]|heading[1-6])\b`)
	titleRefPattern = regexp.MustCompile(`["']([^"']+)["']`)
)

// Result is the outcome of context extraction.
type Result struct {
	// Prompt is the query, prefixed with the matched sections when any.
	Prompt string `json:"prompt"`
	// Sections holds the content of every matched section in discovery
	// order. Duplicates are kept.
	Sections []string `json:"sections"`
	// Labels describe what matched, e.g. "H1" or "'Intro'".
	Labels []string `json:"labels"`
}

// HasContext reports whether any section was attached to the prompt.
func (r Result) HasContext() bool {
	return len(r.Sections) > 0
}

// Summary renders the labels for a status line: "Using H1, 'Intro' context".
func (r Result) Summary() string {
	if len(r.Labels) == 0 {
		return ""
	}
	return "Using " + strings.Join(r.Labels, ", ") + " context"
}

// Extract resolves heading references in query against document and builds
// the augmented prompt. Level references (h1, header2, heading3) are
// resolved first, then quoted titles. When nothing matches but the document
// has headings, the first level-1 section is used, or else the first
// section. A document without headings leaves the query unchanged.
func Extract(document, query string) Result {
	secs := sections.Extract(document)
	if len(secs) == 0 {
		return Result{Prompt: query}
	}

	var res Result
	for _, m := range levelRefPattern.FindAllString(query, -1) {
		level, _ := strconv.Atoi(m[len(m)-1:])
		found := sections.FindByLevel(secs, level)
		if len(found) == 0 {
			continue
		}
		for _, s := range found {
			res.Sections = append(res.Sections, s.Content)
		}
		res.Labels = append(res.Labels, "H"+strconv.Itoa(level))
	}
	for _, m := range titleRefPattern.FindAllStringSubmatch(query, -1) {
		s, ok := sections.FindByTitle(secs, m[1])
		if !ok {
			continue
		}
		res.Sections = append(res.Sections, s.Content)
		res.Labels = append(res.Labels, fmt.Sprintf("'%s'", s.Title))
	}

	if len(res.Sections) == 0 {
		fallback := secs[0]
		if h1 := sections.FindByLevel(secs, 1); len(h1) > 0 {
			fallback = h1[0]
		}
		res.Sections = []string{fallback.Content}
		res.Labels = []string{fmt.Sprintf("H%d (default)", fallback.Level)}
	}

	res.Prompt = augment(res.Sections, query)
	return res
}

func augment(contexts []string, query string) string {
	return ContextMarker + "\n" + strings.Join(contexts, sectionSeparator) + queryHeader + query
}
