package editorservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-schultz/floativerse/internal/ai"
	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/commands"
	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/textedit"
)

type fakeGen struct {
	answer  string
	err     error
	prompts []string
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.err
}

func TestFormat(t *testing.T) {
	svc := New(nil, nil)

	e, err := svc.Format("hello world", textedit.Selection{Start: 0, End: 5}, "bold")
	require.NoError(t, err)
	assert.Equal(t, "**hello** world", e.Text)
	assert.Equal(t, textedit.Caret(9), e.Selection)

	_, err = svc.Format("x", textedit.Caret(0), "strike")
	assert.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestIndent(t *testing.T) {
	svc := New(nil, nil)
	assert.Equal(t, "  x", svc.Indent("x", textedit.Caret(0), false).Text)
	assert.Equal(t, "x", svc.Indent("  x", textedit.Caret(0), true).Text)
}

func TestDetect(t *testing.T) {
	svc := New(nil, nil)

	d := svc.Detect("hello /bo", 9, nil)
	require.NotNil(t, d.Match)
	assert.Equal(t, "/bo", d.Match.Command)
	assert.Equal(t, "open", d.Menu)
	require.Len(t, d.Sections, 1)
	assert.Equal(t, commands.GroupFormatting, d.Sections[0].Group)
	assert.Equal(t, "format.bold", d.Sections[0].Items[0].ID)
	assert.Nil(t, d.Position)

	m := textedit.DefaultMetrics()
	d = svc.Detect("/", 1, &m)
	assert.Equal(t, "open", d.Menu)
	require.NotNil(t, d.Position)
	assert.Equal(t, textedit.CursorCoordinates("/", 1, m), *d.Position)

	d = svc.Detect("see a/b", 7, nil)
	assert.Nil(t, d.Match)
	assert.Equal(t, "closed", d.Menu)
	assert.Empty(t, d.Sections)

	d = svc.Detect("/zzz", 4, nil)
	assert.NotNil(t, d.Match)
	assert.Equal(t, "closed", d.Menu)
}

func TestHeadingsAndContext(t *testing.T) {
	svc := New(nil, nil)
	assert.Empty(t, svc.Headings("no headings"))
	assert.NotNil(t, svc.Headings("no headings"))

	doc := "# Intro\nHello\n## Details\nMore\n"
	secs := svc.Headings(doc)
	require.Len(t, secs, 2)

	res := svc.Context(doc, "explain 'Details'")
	assert.Equal(t, []string{"'Details'"}, res.Labels)
}

func TestCommands(t *testing.T) {
	svc := New(nil, nil)
	assert.Len(t, svc.Commands(""), 4)
	assert.Empty(t, svc.Commands("/nothing-matches"))
}

func TestComplete(t *testing.T) {
	gen := &fakeGen{answer: "a summary"}
	svc := New(gen, nil)

	text := "# Intro\nHello\n/send summarize h1"
	res, err := svc.Complete(context.Background(), text, textedit.UTF16Len(text), nil)
	require.NoError(t, err)

	require.Len(t, gen.prompts, 1)
	assert.True(t, strings.HasPrefix(gen.prompts[0], docctx.ContextMarker))
	assert.Contains(t, gen.prompts[0], "Hello")
	assert.NotContains(t, gen.prompts[0], "/send")

	want := text + "\n\n> a summary\n\n"
	assert.Equal(t, want, res.Edit.Text)
	assert.Equal(t, textedit.Caret(textedit.UTF16Len(want)), res.Edit.Selection)
	require.NotNil(t, res.Request)
	assert.Equal(t, []string{"H1"}, res.Request.Labels)
	require.NotNil(t, res.Response)
	assert.True(t, res.Response.Success)
}

func TestComplete_EmptyPromptSkipsBackend(t *testing.T) {
	gen := &fakeGen{answer: "unused"}
	svc := New(gen, nil)

	res, err := svc.Complete(context.Background(), "notes\n/send", 11, nil)
	assert.ErrorIs(t, err, docctx.ErrEmptyPrompt)
	assert.Empty(t, gen.prompts)
	assert.Equal(t, "notes\n/send", res.Edit.Text)
	assert.False(t, res.Edit.Changed)
}

func TestComplete_FailureLeavesBufferUntouched(t *testing.T) {
	tests := []struct {
		name     string
		gen      ai.Generator
		wantErr  error
		wantText string
	}{
		{"upstream", &fakeGen{err: fmt.Errorf("boom: %w", ai.ErrUpstream)}, ai.ErrUpstream, ai.FailedText},
		{"empty", &fakeGen{answer: "  "}, ai.ErrEmptyResponse, ai.EmptyText},
		{"disabled", nil, ai.ErrDisabled, ai.DisabledText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.gen, nil)
			text := "/chat what now"
			res, err := svc.Complete(context.Background(), text, 14, nil)
			assert.ErrorIs(t, err, ErrGeneration)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, text, res.Edit.Text)
			assert.False(t, res.Edit.Changed)
			require.NotNil(t, res.Response)
			assert.False(t, res.Response.Success)
			assert.Equal(t, tt.wantText, res.Response.Text)
		})
	}
}

func TestExecute_FormatStripsCommand(t *testing.T) {
	svc := New(nil, nil)
	res, err := svc.Execute(context.Background(), ExecuteRequest{
		Text:        "Title /h2",
		Selection:   textedit.Caret(9),
		CommandID:   "heading.h2",
		CommandText: "/h2",
	})
	require.NoError(t, err)
	assert.Equal(t, "## Title ", res.Edit.Text)
	assert.Equal(t, textedit.Caret(9), res.Edit.Selection)
	assert.True(t, res.Edit.Changed)
}

func TestExecute_Layout(t *testing.T) {
	svc := New(nil, nil)
	res, err := svc.Execute(context.Background(), ExecuteRequest{
		Text:      "a\nb",
		Selection: textedit.Selection{Start: 0, End: 3},
		CommandID: "layout.indent",
	})
	require.NoError(t, err)
	assert.Equal(t, "  a\n  b", res.Edit.Text)
}

func TestExecute_AI(t *testing.T) {
	gen := &fakeGen{answer: "ok"}
	svc := New(gen, nil)
	text := "notes\n/se hi"
	res, err := svc.Execute(context.Background(), ExecuteRequest{
		Text:        text,
		Selection:   textedit.Caret(textedit.UTF16Len(text)),
		CommandID:   "ai.send",
		CommandText: "/se hi",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Request)
	assert.Equal(t, docctx.ModeSend, res.Request.Mode)
	assert.Equal(t, "hi", res.Request.Query)
	assert.Equal(t, text+"\n\n> ok\n\n", res.Edit.Text)
}

func TestExecute_UnknownCommand(t *testing.T) {
	svc := New(nil, nil)
	_, err := svc.Execute(context.Background(), ExecuteRequest{Text: "x", CommandID: "format.strike"})
	assert.True(t, errors.Is(err, commands.ErrUnknownCommand))
}

func TestAICommandText(t *testing.T) {
	assert.Equal(t, "/send hi there", aiCommandText(docctx.ModeSend, "/se hi there"))
	assert.Equal(t, "/chat", aiCommandText(docctx.ModeChat, "/ch"))
	assert.Equal(t, "/chat plain words", aiCommandText(docctx.ModeChat, "plain words"))
}
