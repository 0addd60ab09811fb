package textedit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SlashMatch is a slash command found at the end of a line.
type SlashMatch struct {
	// Command is the token starting with "/", or "/" alone for a bare slash.
	Command string `json:"command"`
	// FullText is the command plus any trailing free text, trimmed.
	FullText string `json:"full_text"`
}

// Bare reports whether the match is a lone "/" that should open the full
// command list.
func (m SlashMatch) Bare() bool {
	return m.Command == "/"
}

// Args returns the free text following the command token.
func (m SlashMatch) Args() string {
	return strings.TrimSpace(strings.TrimPrefix(m.FullText, m.Command))
}

// Name returns the command token without its leading slash.
func (m SlashMatch) Name() string {
	return strings.TrimPrefix(m.Command, "/")
}

// DetectSlashCommand inspects the text of a line up to the cursor. A slash
// qualifies only at the start of the line or after whitespace, and must be
// followed by a word (letters, digits, '-' or '_') that ends the line or is
// separated from trailing text by whitespace. A bare slash qualifies only
// when nothing but whitespace follows it. The last qualifying slash wins.
func DetectSlashCommand(lineUpToCursor string) (SlashMatch, bool) {
	for i := strings.LastIndexByte(lineUpToCursor, '/'); i >= 0; i = strings.LastIndexByte(lineUpToCursor[:i], '/') {
		if i > 0 {
			r, _ := utf8.DecodeLastRuneInString(lineUpToCursor[:i])
			if !unicode.IsSpace(r) {
				continue
			}
		}
		rest := lineUpToCursor[i+1:]
		n := wordLen(rest)
		// A bare slash only counts as the last thing typed.
		if n == 0 && strings.TrimSpace(rest) != "" {
			continue
		}
		if n < len(rest) {
			r, _ := utf8.DecodeRuneInString(rest[n:])
			if !unicode.IsSpace(r) {
				continue
			}
		}
		return SlashMatch{
			Command:  "/" + rest[:n],
			FullText: strings.TrimSpace(lineUpToCursor[i:]),
		}, true
	}
	return SlashMatch{}, false
}

// DetectAt runs DetectSlashCommand on the current line of text, up to the
// cursor.
func DetectAt(text string, cursor int) (SlashMatch, bool) {
	if cursor < 0 {
		return SlashMatch{}, false
	}
	pos := ByteOffset(text, cursor)
	start, _ := lineBounds(text, pos)
	return DetectSlashCommand(text[start:pos])
}

func wordLen(s string) int {
	for i, r := range s {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
			return i
		}
	}
	return len(s)
}
