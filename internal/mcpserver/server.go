// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes notes and the editor's text commands to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/e-schultz/floativerse/internal/ai"
	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/editorservice"
	"github.com/e-schultz/floativerse/internal/noteservice"
	"github.com/e-schultz/floativerse/internal/parser"
	"github.com/e-schultz/floativerse/internal/storage"
	"github.com/e-schultz/floativerse/internal/textedit"
)

// Server wraps the MCP server with floativerse tools.
type Server struct {
	mcp         *server.MCPServer
	notes       *noteservice.Service
	editor      *editorservice.Service
	userID      string
	attachments storage.Provider
}

// New creates a new MCP server acting as userID. attach_image is only
// registered when attachments is non-nil.
func New(notes *noteservice.Service, editor *editorservice.Service, userID string, attachments storage.Provider) *Server {
	s := &Server{notes: notes, editor: editor, userID: userID, attachments: attachments}

	s.mcp = server.NewMCPServer(
		"floativerse",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, content and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note as a Markdown file with YAML frontmatter."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new note. Read the floativerse://note-format resource first."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
		mcp.WithString("content", mcp.Description("Markdown content")),
		mcp.WithString("tags", mcp.Description("Comma-separated tags; inline #tags are used when omitted")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("list_recent_notes",
		mcp.WithDescription("List the most recently updated notes."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of notes (default 20)")),
		mcp.WithString("tag", mcp.Description("Only notes with this tag")),
	), s.listRecentNotes)

	s.mcp.AddTool(mcp.NewTool("get_note_headings",
		mcp.WithDescription("List the headings of a note with their level and UTF-16 offsets."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.getNoteHeadings)

	s.mcp.AddTool(mcp.NewTool("build_prompt",
		mcp.WithDescription("Attach the sections of a note that a query refers to (h1, header2, 'Title') "+
			"and return the augmented prompt."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Question about the note")),
	), s.buildPrompt)

	s.mcp.AddTool(mcp.NewTool("format_text",
		mcp.WithDescription("Apply a Markdown format to a selection. Offsets are UTF-16 code units."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Buffer")),
		mcp.WithString("format", mcp.Required(), mcp.Description("Format"),
			mcp.Enum("bold", "italic", "underline", "code", "link", "image", "bullet", "number",
				"h1", "h2", "h3", "h4", "h5", "h6")),
		mcp.WithNumber("selection_start", mcp.Description("Selection start")),
		mcp.WithNumber("selection_end", mcp.Description("Selection end")),
	), s.formatText)

	s.mcp.AddTool(mcp.NewTool("ask_ai",
		mcp.WithDescription("Ask the configured AI backend a question, with context from a note when id is given."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Question")),
		mcp.WithString("id", mcp.Description("Note id to take context from")),
	), s.askAI)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Returns the note format description. Same as the floativerse://note-format resource."),
	), s.getNoteFormat)

	if attachments != nil {
		s.mcp.AddTool(mcp.NewTool("attach_image",
			mcp.WithDescription("Store an image given as a base64 data URI and return a Markdown snippet referencing it."),
			mcp.WithString("data_uri", mcp.Required(), mcp.Description("data:image/png;base64,...")),
			mcp.WithString("alt", mcp.Description("Alt text")),
		), s.attachImage)
	}

	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format",
			mcp.WithResourceDescription("How notes are mirrored to disk and how headings are referenced."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func errorResult(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError("note not found"), nil
	}
	return mcp.NewToolResultError(err.Error()), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.notes.Search(ctx, s.userID, query, req.GetInt("limit", 20))
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(hits)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.notes.GetNote(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	data, err := parser.Render(*n)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in := noteservice.CreateInput{Title: title, Content: req.GetString("content", "")}
	if tags := req.GetString("tags", ""); tags != "" {
		in.Tags = strings.Split(tags, ",")
	}
	n, err := s.notes.CreateNote(ctx, s.userID, in)
	if err != nil {
		return errorResult(err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", n.ID)), nil
}

func (s *Server) listRecentNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.notes.RecentNotes(ctx, s.userID, req.GetInt("limit", 20), 0, req.GetString("tag", ""))
	if err != nil {
		return errorResult(err)
	}
	if len(items) == 0 {
		return mcp.NewToolResultText("no notes"), nil
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s\t%s\t%s\n", it.ID, it.UpdatedAt.Format("2006-01-02 15:04"), it.Title)
	}
	return mcp.NewToolResultText(strings.TrimSuffix(b.String(), "\n")), nil
}

func (s *Server) getNoteHeadings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	secs, err := s.notes.Headings(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(secs)
}

type promptResult struct {
	Prompt  string   `json:"prompt"`
	Labels  []string `json:"labels"`
	Summary string   `json:"summary,omitempty"`
}

func (s *Server) buildPrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.notes.GetNote(ctx, id)
	if err != nil {
		return errorResult(err)
	}
	res := s.editor.Context(n.Content, query)
	return jsonResult(promptResult{Prompt: res.Prompt, Labels: res.Labels, Summary: res.Summary()})
}

func (s *Server) formatText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sel := textedit.Selection{
		Start: req.GetInt("selection_start", 0),
		End:   req.GetInt("selection_end", 0),
	}
	edit, err := s.editor.Format(text, sel, format)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(edit)
}

func (s *Server) askAI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prompt, summary := query, ""
	if id := req.GetString("id", ""); id != "" {
		n, err := s.notes.GetNote(ctx, id)
		if err != nil {
			return errorResult(err)
		}
		res := s.editor.Context(n.Content, query)
		prompt, summary = res.Prompt, res.Summary()
	}
	resp := ai.Respond(ctx, s.editor.Generator(), prompt)
	if !resp.Success {
		return mcp.NewToolResultError(resp.Text), nil
	}
	if summary != "" {
		return mcp.NewToolResultText(summary + "\n\n" + resp.Text), nil
	}
	return mcp.NewToolResultText(resp.Text), nil
}

func (s *Server) getNoteFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormat), nil
}

func (s *Server) readNoteFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormat,
		},
	}, nil
}
