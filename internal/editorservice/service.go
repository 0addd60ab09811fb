// Package editorservice runs the editor's text commands for the API and MCP
// layers: formatting, slash-command detection, heading outlines, prompt
// building and the AI round trip.
package editorservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/e-schultz/floativerse/internal/ai"
	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/commands"
	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/sections"
	"github.com/e-schultz/floativerse/internal/textedit"
)

// ErrGeneration wraps failures of the AI backend during Complete.
var ErrGeneration = errors.New("generation failed")

// Detection is the slash-menu view of the buffer at a cursor.
type Detection struct {
	Match    *textedit.SlashMatch `json:"match"`
	Menu     string               `json:"menu"`
	Sections []commands.Section   `json:"sections"`
	Position *textedit.Point      `json:"position,omitempty"`
}

// Result is the outcome of a buffer-changing command.
type Result struct {
	Edit textedit.Edit `json:"edit"`
	// Request and Response are set for AI commands.
	Request  *docctx.Request `json:"request,omitempty"`
	Response *ai.Response    `json:"response,omitempty"`
}

// ExecuteRequest runs a command picked from the menu.
type ExecuteRequest struct {
	Text      string
	Selection textedit.Selection
	CommandID string
	// CommandText is the slash command typed before the pick, such as
	// "/bo" or "/send summarize". It is removed from the buffer before a
	// format or layout command runs.
	CommandText string
}

// Service is stateless apart from its collaborators and safe for concurrent
// use.
type Service struct {
	table   *commands.Table
	gen     ai.Generator
	metrics textedit.Metrics
	logger  *slog.Logger
}

// New creates an editor service that answers AI commands with gen. A nil gen
// disables AI commands.
func New(gen ai.Generator, logger *slog.Logger) *Service {
	if gen == nil {
		gen = ai.Disabled{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		table:   commands.Default(),
		gen:     gen,
		metrics: textedit.DefaultMetrics(),
		logger:  logger,
	}
}

// Generator returns the backend used for AI commands.
func (s *Service) Generator() ai.Generator {
	return s.gen
}

// Format applies the format named by id ("bold", "h2", ...) to sel.
func (s *Service) Format(text string, sel textedit.Selection, id string) (textedit.Edit, error) {
	f, ok := textedit.ParseFormat(id)
	if !ok {
		return textedit.Edit{}, fmt.Errorf("%w: unknown format %q", apperr.ErrInvalid, id)
	}
	return textedit.ApplyFormat(text, sel, f), nil
}

// Indent indents, or with outdent set outdents, the lines of sel.
func (s *Service) Indent(text string, sel textedit.Selection, outdent bool) textedit.Edit {
	if outdent {
		return textedit.Outdent(text, sel)
	}
	return textedit.Indent(text, sel)
}

// Detect reports the slash command typed at cursor and the menu it opens.
// Position is filled when metrics is non-nil.
func (s *Service) Detect(text string, cursor int, metrics *textedit.Metrics) Detection {
	match, ok := textedit.DetectAt(text, cursor)
	menu := commands.NewMenu(s.table)
	menu.Sync(match, ok)

	d := Detection{Menu: menu.State().String(), Sections: []commands.Section{}}
	if ok {
		d.Match = &match
	}
	if menu.State() == commands.MenuOpen {
		d.Sections = s.table.Grouped(match.Command)
		if metrics != nil {
			p := textedit.CursorCoordinates(text, cursor, *metrics)
			d.Position = &p
		}
	}
	return d
}

// Headings parses the heading outline of text.
func (s *Service) Headings(text string) []sections.Section {
	secs := sections.Extract(text)
	if secs == nil {
		return []sections.Section{}
	}
	return secs
}

// Context extracts the sections of document that query refers to.
func (s *Service) Context(document, query string) docctx.Result {
	return docctx.Extract(document, query)
}

// Cursor returns the menu position for cursor. Nil metrics use the defaults.
func (s *Service) Cursor(text string, cursor int, metrics *textedit.Metrics) textedit.Point {
	m := s.metrics
	if metrics != nil {
		m = *metrics
	}
	return textedit.CursorCoordinates(text, cursor, m)
}

// Commands returns the command menu filtered by query, grouped.
func (s *Service) Commands(query string) []commands.Section {
	out := s.table.Grouped(query)
	if out == nil {
		return []commands.Section{}
	}
	return out
}

// Complete answers the AI command on the line at cursor and splices the
// answer under that line. When commandText is nil the command is read from
// the line. On failure the returned edit leaves text untouched; generation
// failures carry the user-facing message in Response.
func (s *Service) Complete(ctx context.Context, text string, cursor int, commandText *string) (Result, error) {
	untouched := Result{Edit: textedit.Edit{Text: text, Selection: textedit.Caret(cursor)}}

	req, err := docctx.BuildPrompt(text, cursor, commandText)
	if err != nil {
		return untouched, err
	}
	untouched.Request = &req
	s.logger.Debug("editorservice: prompt built",
		slog.String("mode", string(req.Mode)),
		slog.String("labels", strings.Join(req.Labels, ", ")),
	)

	answer, err := s.gen.Generate(ctx, req.Prompt)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = ai.ErrEmptyResponse
	}
	if err != nil {
		s.logger.Warn("editorservice: generate failed", slog.String("error", err.Error()))
		untouched.Response = &ai.Response{Text: ai.FailureText(err), Error: err.Error()}
		return untouched, fmt.Errorf("editorservice: complete: %w: %w", ErrGeneration, err)
	}

	return Result{
		Edit:     docctx.Splice(text, answer, req.InsertAt),
		Request:  &req,
		Response: &ai.Response{Text: answer, Success: true},
	}, nil
}

// Execute runs the command with the given id.
func (s *Service) Execute(ctx context.Context, r ExecuteRequest) (Result, error) {
	d, err := s.table.Resolve(r.CommandID)
	if err != nil {
		return Result{Edit: textedit.Edit{Text: r.Text, Selection: r.Selection}}, err
	}
	s.logger.Debug("editorservice: execute", slog.String("command", d.ID))

	return commands.Dispatch(d.Action, commands.Handlers[Result]{
		Format: func(a commands.FormatAction) (Result, error) {
			text, sel := stripCommand(r.Text, r.Selection, r.CommandText)
			return Result{Edit: changedIfDiffers(r.Text, textedit.ApplyFormat(text, sel, a.Format))}, nil
		},
		Layout: func(a commands.LayoutAction) (Result, error) {
			text, sel := stripCommand(r.Text, r.Selection, r.CommandText)
			return Result{Edit: changedIfDiffers(r.Text, s.Indent(text, sel, a.Outdent))}, nil
		},
		AI: func(a commands.AIAction) (Result, error) {
			cmd := aiCommandText(a.Mode, r.CommandText)
			return s.Complete(ctx, r.Text, r.Selection.End, &cmd)
		},
	})
}

// aiCommandText turns whatever was typed into "/<mode> <query>". A typed
// "/sen summarize" picked as Send becomes "/send summarize".
func aiCommandText(mode docctx.Mode, typed string) string {
	typed = strings.TrimSpace(typed)
	query := typed
	if strings.HasPrefix(typed, "/") {
		query = ""
		if i := strings.IndexAny(typed, " \t"); i >= 0 {
			query = strings.TrimSpace(typed[i:])
		}
	}
	return strings.TrimSpace("/" + string(mode) + " " + query)
}

// stripCommand removes commandText when it is the slash command ending
// right before the caret, and collapses the selection where it stood.
func stripCommand(text string, sel textedit.Selection, commandText string) (string, textedit.Selection) {
	commandText = strings.TrimSpace(commandText)
	if commandText == "" {
		return text, sel
	}
	caret := sel.Normalize(textedit.UTF16Len(text)).End
	line, ok := textedit.CurrentLine(text, caret)
	if !ok {
		return text, sel
	}
	lineStart := textedit.ByteOffset(text, line.Start)
	caretPos := textedit.ByteOffset(text, caret)
	upTo := text[lineStart:caretPos]

	m, found := textedit.DetectSlashCommand(upTo)
	if !found || m.FullText != commandText {
		return text, sel
	}
	i := strings.LastIndex(upTo, m.FullText)
	cut := lineStart + i
	out := text[:cut] + text[caretPos:]
	return out, textedit.Caret(textedit.UTF16Offset(out, cut))
}

func changedIfDiffers(original string, e textedit.Edit) textedit.Edit {
	e.Changed = e.Text != original
	return e
}
