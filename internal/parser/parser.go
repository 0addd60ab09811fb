// Package parser reads and writes the Markdown files that mirror notes on
// disk: YAML frontmatter followed by the note content.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/e-schultz/floativerse/internal/models"
	"github.com/e-schultz/floativerse/internal/sections"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Frontmatter is the metadata block of a mirrored note.
type Frontmatter struct {
	ID      string    `yaml:"id,omitempty"`
	Title   string    `yaml:"title,omitempty"`
	Tags    []string  `yaml:"tags,omitempty"`
	UserID  string    `yaml:"user_id,omitempty"`
	Created time.Time `yaml:"created,omitempty"`
	Updated time.Time `yaml:"updated,omitempty"`
}

// Result holds the output of parsing a mirrored file.
type Result struct {
	// Frontmatter is nil when the file has no valid frontmatter block.
	Frontmatter *Frontmatter
	Body        string
	Tags        []string
	Title       string
}

// Parse splits frontmatter from body. Files without frontmatter, or with
// invalid YAML, are treated as body only. Tags come from the frontmatter,
// or from inline #tags when the frontmatter has none.
func Parse(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)

	r := &Result{Frontmatter: fm, Body: body}
	if fm != nil && len(fm.Tags) > 0 {
		r.Tags = dedupe(fm.Tags)
	} else {
		r.Tags = InlineTags(body)
	}
	r.Title = deriveTitle(fm, body)
	return r, nil
}

// Render writes n as a mirror file. Parse(Render(n)).Body == n.Content.
func Render(n models.Note) ([]byte, error) {
	fm := Frontmatter{
		ID:      n.ID,
		Title:   n.Title,
		Tags:    n.Tags,
		UserID:  n.UserID,
		Created: n.CreatedAt.UTC(),
		Updated: n.UpdatedAt.UTC(),
	}
	head, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("parser: render frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(head) + len(n.Content) + 8)
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- lines)
// from the body. Exactly one line terminator after the closing delimiter is
// consumed, so the body round-trips byte for byte.
func splitFrontmatter(data []byte) (*Frontmatter, string) {
	const delim = "---"
	if !bytes.HasPrefix(data, []byte(delim+"\n")) && !bytes.HasPrefix(data, []byte(delim+"\r\n")) {
		return nil, string(data)
	}

	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	after := rest[idx+1+len(delim):]
	switch {
	case bytes.HasPrefix(after, []byte("\r\n")):
		after = after[2:]
	case bytes.HasPrefix(after, []byte("\n")):
		after = after[1:]
	case len(after) > 0:
		// "----" or "---x" is not a closing delimiter.
		return nil, string(data)
	}

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return &fm, string(after)
}

// InlineTags collects #tags written in body, in order of first appearance.
// Headings are not tags: "# Title" needs no special casing because the tag
// pattern requires a letter right after '#'.
func InlineTags(body string) []string {
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return dedupe(out)
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := []string{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// deriveTitle returns the frontmatter title if present, otherwise the first
// level-1 heading, otherwise the first heading of any level.
func deriveTitle(fm *Frontmatter, body string) string {
	if fm != nil && fm.Title != "" {
		return fm.Title
	}
	secs := sections.Extract(body)
	if h1 := sections.FindByLevel(secs, 1); len(h1) > 0 {
		return h1[0].Title
	}
	if len(secs) > 0 {
		return secs[0].Title
	}
	return ""
}
