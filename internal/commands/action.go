package commands

import (
	"errors"
	"fmt"

	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/textedit"
)

// ErrUnsupported is returned by Dispatch when no handler is registered for
// the action's kind.
var ErrUnsupported = errors.New("unsupported action")

// Action is what a command does. The set of implementations is closed:
// FormatAction, AIAction and LayoutAction.
type Action interface {
	Kind() string
	isAction()
}

// FormatAction applies a Markdown format to the selection or current line.
type FormatAction struct {
	Format textedit.Format
}

// AIAction sends a prompt built from the document to the AI backend.
type AIAction struct {
	Mode docctx.Mode
}

// LayoutAction indents or outdents the selected lines.
type LayoutAction struct {
	Outdent bool
}

func (FormatAction) Kind() string { return "format" }
func (AIAction) Kind() string     { return "ai" }
func (LayoutAction) Kind() string { return "layout" }

func (FormatAction) isAction() {}
func (AIAction) isAction()     {}
func (LayoutAction) isAction() {}

// Handlers holds one callback per action kind.
type Handlers[T any] struct {
	Format func(FormatAction) (T, error)
	AI     func(AIAction) (T, error)
	Layout func(LayoutAction) (T, error)
}

// Dispatch routes a to the matching handler.
func Dispatch[T any](a Action, h Handlers[T]) (T, error) {
	var zero T
	switch a := a.(type) {
	case FormatAction:
		if h.Format != nil {
			return h.Format(a)
		}
	case AIAction:
		if h.AI != nil {
			return h.AI(a)
		}
	case LayoutAction:
		if h.Layout != nil {
			return h.Layout(a)
		}
	default:
		return zero, fmt.Errorf("commands: dispatch %T: %w", a, ErrUnsupported)
	}
	return zero, fmt.Errorf("commands: dispatch %s: %w", a.Kind(), ErrUnsupported)
}
