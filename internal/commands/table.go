// Package commands holds the static command table behind the editor's slash
// menu and the menu's open/closed state machine.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/textedit"
)

// ErrUnknownCommand is returned when a command id is not in the table.
var ErrUnknownCommand = errors.New("unknown command")

// Group partitions the table for menu rendering.
type Group string

// Menu groups, in display order.
const (
	GroupFormatting Group = "formatting"
	GroupHeadings   Group = "headings"
	GroupLayout     Group = "layout"
	GroupAI         Group = "ai"
)

var groupOrder = []Group{GroupFormatting, GroupHeadings, GroupLayout, GroupAI}

// Descriptor is one entry of the command table.
type Descriptor struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Group       Group  `json:"group"`
	Action      Action `json:"-"`
}

// Section is a group of descriptors for a menu.
type Section struct {
	Group Group        `json:"group"`
	Items []Descriptor `json:"items"`
}

// Table is an immutable ordered list of commands.
type Table struct {
	items []Descriptor
	byID  map[string]int
}

// NewTable builds a table, rejecting empty and duplicate ids.
func NewTable(items ...Descriptor) (*Table, error) {
	t := &Table{
		items: make([]Descriptor, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, d := range items {
		if d.ID == "" || d.Action == nil {
			return nil, fmt.Errorf("commands: new table: incomplete descriptor %q", d.ID)
		}
		if _, dup := t.byID[d.ID]; dup {
			return nil, fmt.Errorf("commands: new table: duplicate id %q", d.ID)
		}
		t.byID[d.ID] = len(t.items)
		t.items = append(t.items, d)
	}
	return t, nil
}

// Default returns the built-in command table.
func Default() *Table {
	items := []Descriptor{
		{"format.bold", "Bold", "Make text bold", GroupFormatting, FormatAction{textedit.FormatBold}},
		{"format.italic", "Italic", "Make text italic", GroupFormatting, FormatAction{textedit.FormatItalic}},
		{"format.underline", "Underline", "Underline text", GroupFormatting, FormatAction{textedit.FormatUnderline}},
		{"format.bullet", "Bullet List", "Create bullet list", GroupFormatting, FormatAction{textedit.FormatBullet}},
		{"format.number", "Numbered List", "Create numbered list", GroupFormatting, FormatAction{textedit.FormatNumber}},
		{"format.link", "Link", "Insert link", GroupFormatting, FormatAction{textedit.FormatLink}},
		{"format.image", "Image", "Insert image", GroupFormatting, FormatAction{textedit.FormatImage}},
		{"format.code", "Code", "Format as code", GroupFormatting, FormatAction{textedit.FormatCode}},
	}
	for level := 1; level <= 6; level++ {
		f := textedit.FormatH1 + textedit.Format(level-1)
		items = append(items, Descriptor{
			ID:          "heading." + f.String(),
			Label:       fmt.Sprintf("Heading %d", level),
			Description: fmt.Sprintf("Turn the line into a level %d heading", level),
			Group:       GroupHeadings,
			Action:      FormatAction{f},
		})
	}
	items = append(items,
		Descriptor{"layout.indent", "Indent", "Indent selected lines", GroupLayout, LayoutAction{}},
		Descriptor{"layout.outdent", "Outdent", "Outdent selected lines", GroupLayout, LayoutAction{Outdent: true}},
		Descriptor{"ai.send", "Send to AI", "Send current line to the AI assistant", GroupAI, AIAction{docctx.ModeSend}},
		Descriptor{"ai.chat", "Chat with AI", "Ask the AI about this document", GroupAI, AIAction{docctx.ModeChat}},
	)
	t, err := NewTable(items...)
	if err != nil {
		panic(err)
	}
	return t
}

// All returns every descriptor in table order.
func (t *Table) All() []Descriptor {
	return append([]Descriptor(nil), t.items...)
}

// Len returns the number of commands.
func (t *Table) Len() int {
	return len(t.items)
}

// Lookup finds a descriptor by id.
func (t *Table) Lookup(id string) (Descriptor, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return t.items[i], true
}

// Resolve is Lookup with an error for unknown ids.
func (t *Table) Resolve(id string) (Descriptor, error) {
	d, ok := t.Lookup(id)
	if !ok {
		return Descriptor{}, fmt.Errorf("commands: resolve %q: %w", id, ErrUnknownCommand)
	}
	return d, nil
}

// Filter returns the commands whose label contains query, ignoring case and
// a leading "/". An empty query returns everything.
func (t *Table) Filter(query string) []Descriptor {
	q := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(query), "/")))
	var out []Descriptor
	for _, d := range t.items {
		if strings.Contains(strings.ToLower(d.Label), q) {
			out = append(out, d)
		}
	}
	return out
}

// Grouped filters like Filter and buckets the result by group. Empty groups
// are omitted.
func (t *Table) Grouped(query string) []Section {
	byGroup := make(map[Group][]Descriptor)
	for _, d := range t.Filter(query) {
		byGroup[d.Group] = append(byGroup[d.Group], d)
	}
	var out []Section
	for _, g := range groupOrder {
		if items := byGroup[g]; len(items) > 0 {
			out = append(out, Section{Group: g, Items: items})
		}
	}
	return out
}
