package docctx

import (
	"strings"

	"github.com/e-schultz/floativerse/internal/textedit"
)

// Quote renders a generated answer as a blockquote surrounded by blank
// lines.
func Quote(response string) string {
	return "\n\n> " + strings.ReplaceAll(response, "\n", "\n> ") + "\n\n"
}

// Splice inserts the quoted response at the UTF-16 offset at and places the
// caret after it. Offsets past the end append.
func Splice(text, response string, at int) textedit.Edit {
	pos := textedit.ByteOffset(text, at)
	quoted := Quote(response)
	out := text[:pos] + quoted + text[pos:]
	return textedit.Edit{
		Text:      out,
		Selection: textedit.Caret(textedit.UTF16Offset(out, pos+len(quoted))),
		Changed:   true,
	}
}
