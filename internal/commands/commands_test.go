package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/textedit"
)

func ids(ds []Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestDefaultTable(t *testing.T) {
	tbl := Default()

	assert.Equal(t, 18, tbl.Len())
	all := tbl.All()
	assert.Equal(t, "format.bold", all[0].ID)
	assert.Equal(t, "ai.chat", all[len(all)-1].ID)

	d, ok := tbl.Lookup("heading.h3")
	require.True(t, ok)
	assert.Equal(t, FormatAction{textedit.FormatH3}, d.Action)
	assert.Equal(t, GroupHeadings, d.Group)

	d, ok = tbl.Lookup("ai.send")
	require.True(t, ok)
	assert.Equal(t, AIAction{docctx.ModeSend}, d.Action)
}

func TestTableResolve(t *testing.T) {
	_, err := Default().Resolve("format.strike")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestNewTableRejectsDuplicates(t *testing.T) {
	d := Descriptor{ID: "x", Label: "X", Action: LayoutAction{}}
	_, err := NewTable(d, d)
	assert.Error(t, err)

	_, err = NewTable(Descriptor{ID: "y"})
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	tbl := Default()
	tests := []struct {
		query string
		want  []string
	}{
		{"/bo", []string{"format.bold"}},
		{"LIST", []string{"format.bullet", "format.number"}},
		{"/send", []string{"ai.send"}},
		{"ai", []string{"ai.send", "ai.chat"}},
		{"/zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := tbl.Filter(tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
	assert.Len(t, tbl.Filter("/"), tbl.Len())
}

func TestGrouped(t *testing.T) {
	got := Default().Grouped("dent")

	require.Len(t, got, 1)
	assert.Equal(t, GroupLayout, got[0].Group)
	assert.Equal(t, []string{"layout.indent", "layout.outdent"}, ids(got[0].Items))

	all := Default().Grouped("")
	require.Len(t, all, 4)
	assert.Equal(t, GroupFormatting, all[0].Group)
	assert.Equal(t, GroupAI, all[3].Group)
}

func TestDispatch(t *testing.T) {
	h := Handlers[string]{
		Format: func(a FormatAction) (string, error) { return "format:" + a.Format.String(), nil },
		AI:     func(a AIAction) (string, error) { return "ai:" + string(a.Mode), nil },
	}

	got, err := Dispatch[string](FormatAction{textedit.FormatBold}, h)
	require.NoError(t, err)
	assert.Equal(t, "format:bold", got)

	got, err = Dispatch[string](AIAction{docctx.ModeChat}, h)
	require.NoError(t, err)
	assert.Equal(t, "ai:chat", got)

	_, err = Dispatch[string](LayoutAction{}, h)
	assert.True(t, errors.Is(err, ErrUnsupported))
}

func TestMenuLifecycle(t *testing.T) {
	m := NewMenu(Default())
	assert.Equal(t, MenuClosed, m.State())

	m.Sync(textedit.DetectSlashCommand("/"))
	require.Equal(t, MenuOpen, m.State())
	assert.Len(t, m.Items(), Default().Len())

	m.Sync(textedit.DetectSlashCommand("/list"))
	assert.Equal(t, []string{"format.bullet", "format.number"}, ids(m.Items()))

	m.Move(-1)
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "format.number", sel.ID, "moving up from the first entry wraps")

	m.Move(1)
	sel, _ = m.Selected()
	assert.Equal(t, "format.bullet", sel.ID)

	choice, ok := m.Confirm()
	require.True(t, ok)
	assert.Equal(t, "format.bullet", choice.Command.ID)
	assert.Equal(t, "/list", choice.Match.Command)
	assert.Equal(t, MenuClosed, m.State())

	_, ok = m.Confirm()
	assert.False(t, ok)
}

func TestMenuClosesWithoutMatch(t *testing.T) {
	m := NewMenu(Default())
	m.Sync(textedit.DetectSlashCommand("/se"))
	require.Equal(t, MenuOpen, m.State())

	m.Sync(textedit.DetectSlashCommand("see a/b"))
	assert.Equal(t, MenuClosed, m.State())

	m.Sync(textedit.DetectSlashCommand("/nothing"))
	assert.Equal(t, MenuClosed, m.State())

	m.Sync(textedit.DetectSlashCommand("/"))
	m.Close()
	assert.Equal(t, MenuClosed, m.State())
	assert.Empty(t, m.Items())
}

func TestMenuKeepsSelectionWhileTypingArgs(t *testing.T) {
	m := NewMenu(Default())
	m.Sync(textedit.DetectSlashCommand("/"))
	m.Move(2)
	m.Sync(textedit.DetectSlashCommand("/"))
	sel, _ := m.Selected()
	assert.Equal(t, "format.underline", sel.ID)
}
