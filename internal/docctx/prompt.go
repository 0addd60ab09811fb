package docctx

import (
	"errors"
	"strings"

	"github.com/e-schultz/floativerse/internal/textedit"
)

var (
	// ErrEmptyPrompt is returned when a command carries no query. The caller
	// must not contact the generation backend.
	ErrEmptyPrompt = errors.New("empty prompt")
	// ErrUnknownCommand is returned for slash commands other than /send and
	// /chat.
	ErrUnknownCommand = errors.New("unknown ai command")
	// ErrNoCursor is returned when no cursor position is available.
	ErrNoCursor = errors.New("no cursor")
)

// Mode selects how much of the document backs a prompt.
type Mode string

const (
	// ModeSend attaches the sections referenced by the query.
	ModeSend Mode = "send"
	// ModeChat behaves like ModeSend but falls back to the whole document
	// when it has no headings.
	ModeChat Mode = "chat"
)

// ParseMode maps a command token such as "/send" or "chat" to a Mode.
func ParseMode(command string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimPrefix(command, "/"))) {
	case ModeSend:
		return ModeSend, true
	case ModeChat:
		return ModeChat, true
	}
	return "", false
}

// Request is a prompt ready for the generation backend.
type Request struct {
	Mode   Mode     `json:"mode"`
	Query  string   `json:"query"`
	Prompt string   `json:"prompt"`
	Labels []string `json:"labels"`
	// InsertAt is the UTF-16 offset where the answer is spliced: the end of
	// the line holding the command.
	InsertAt int `json:"insert_at"`
}

// BuildPrompt prepares the prompt for an AI command typed at cursor. When
// commandText is nil the command is read from the current line. The command
// segment itself is removed from the document before context extraction so
// it never leaks into the attached sections.
func BuildPrompt(text string, cursor int, commandText *string) (Request, error) {
	line, ok := textedit.CurrentLine(text, cursor)
	if !ok {
		return Request{}, ErrNoCursor
	}

	var segment, token, query string
	if commandText != nil {
		segment = strings.TrimSpace(*commandText)
		token, query = splitCommand(segment)
	} else {
		m, found := textedit.DetectSlashCommand(line.Text)
		if !found {
			return Request{}, ErrUnknownCommand
		}
		segment = m.FullText
		token = m.Command
		query = strings.TrimSpace(strings.Replace(line.Text, m.Command, "", 1))
	}

	mode, ok := ParseMode(token)
	if !ok || !strings.HasPrefix(token, "/") {
		return Request{}, ErrUnknownCommand
	}
	if query == "" {
		return Request{}, ErrEmptyPrompt
	}

	doc := withoutSegment(text, line, segment)
	res := Extract(doc, query)
	if mode == ModeChat && !res.HasContext() && strings.TrimSpace(doc) != "" {
		res = Result{
			Prompt:   augment([]string{doc}, query),
			Sections: []string{doc},
			Labels:   []string{"document"},
		}
	}

	return Request{
		Mode:     mode,
		Query:    query,
		Prompt:   res.Prompt,
		Labels:   res.Labels,
		InsertAt: line.End,
	}, nil
}

// splitCommand separates "/send some text" into its token and the trimmed
// free text.
func splitCommand(s string) (string, string) {
	i := strings.IndexFunc(s, isSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// withoutSegment drops the last occurrence of segment on line from text.
func withoutSegment(text string, line textedit.Line, segment string) string {
	if segment == "" {
		return text
	}
	i := strings.LastIndex(line.Text, segment)
	if i < 0 {
		return text
	}
	start := textedit.ByteOffset(text, line.Start) + i
	return text[:start] + text[start+len(segment):]
}
