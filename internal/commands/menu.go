package commands

import "github.com/e-schultz/floativerse/internal/textedit"

// MenuState is the state of the slash menu.
type MenuState int

const (
	MenuClosed MenuState = iota
	MenuOpen
)

func (s MenuState) String() string {
	if s == MenuOpen {
		return "open"
	}
	return "closed"
}

// Choice is a confirmed menu entry together with the slash command that was
// typed when it was picked.
type Choice struct {
	Command Descriptor
	Match   textedit.SlashMatch
}

// Menu tracks the slash menu of one editor session. It is not safe for
// concurrent use.
type Menu struct {
	table    *Table
	state    MenuState
	match    textedit.SlashMatch
	items    []Descriptor
	selected int
}

// NewMenu returns a closed menu over table.
func NewMenu(table *Table) *Menu {
	return &Menu{table: table}
}

// State returns the current state.
func (m *Menu) State() MenuState {
	return m.state
}

// Items returns the filtered entries while open.
func (m *Menu) Items() []Descriptor {
	return m.items
}

// Sync feeds the detector result for the latest buffer change. A match opens
// the menu or refilters it; no match, or a filter that leaves nothing to
// pick, closes it.
func (m *Menu) Sync(match textedit.SlashMatch, ok bool) {
	if !ok {
		m.Close()
		return
	}
	items := m.table.Filter(match.Command)
	if len(items) == 0 {
		m.Close()
		return
	}
	if m.state != MenuOpen || match.Command != m.match.Command {
		m.selected = 0
	}
	m.state = MenuOpen
	m.match = match
	m.items = items
}

// Move shifts the highlighted entry by delta, wrapping at both ends.
func (m *Menu) Move(delta int) {
	n := len(m.items)
	if m.state != MenuOpen || n == 0 {
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

// Selected returns the highlighted entry.
func (m *Menu) Selected() (Descriptor, bool) {
	if m.state != MenuOpen || len(m.items) == 0 {
		return Descriptor{}, false
	}
	return m.items[m.selected], true
}

// Confirm picks the highlighted entry and closes the menu.
func (m *Menu) Confirm() (Choice, bool) {
	d, ok := m.Selected()
	if !ok {
		return Choice{}, false
	}
	c := Choice{Command: d, Match: m.match}
	m.Close()
	return c, true
}

// Close dismisses the menu (Escape, blur or a click outside).
func (m *Menu) Close() {
	m.state = MenuClosed
	m.match = textedit.SlashMatch{}
	m.items = nil
	m.selected = 0
}
