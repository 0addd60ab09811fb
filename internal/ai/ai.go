// Package ai talks to the text-generation backend that answers editor
// prompts.
package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/e-schultz/floativerse/internal/docctx"
)

var (
	// ErrDisabled is returned when no provider is configured.
	ErrDisabled = errors.New("ai disabled")
	// ErrEmptyResponse is returned when the backend answers with no text.
	ErrEmptyResponse = errors.New("empty response")
	// ErrUpstream marks failures reported by the backend or the network.
	ErrUpstream = errors.New("upstream failure")
)

const (
	contextSystemMessage = "You are a helpful AI assistant integrated into a note-taking app. " +
		"You have been provided with document context from the user's notes. " +
		"Use this context to provide accurate, relevant responses. " +
		"Format your responses in markdown when appropriate."
	plainSystemMessage = "You are a helpful AI assistant integrated into a note-taking app. " +
		"Provide concise, helpful responses. " +
		"Format your responses in markdown when appropriate."
)

// User-facing texts shown in place of an answer.
const (
	FailedText     = "Sorry, I couldn't generate a response. Please try again later."
	EmptyText      = "Sorry, I received an empty response. Please try again."
	UnexpectedText = "Sorry, an unexpected error occurred. Please try again later."
	DisabledText   = "AI assistance is not configured."
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// SystemMessage picks the system instruction for prompt: prompts carrying
// document context get the context-aware one.
func SystemMessage(prompt string) string {
	if strings.Contains(prompt, docctx.ContextMarker) {
		return contextSystemMessage
	}
	return plainSystemMessage
}

// Response is the outcome of a generation as shown to the user.
type Response struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Respond runs g and converts failures into a user-facing Response.
func Respond(ctx context.Context, g Generator, prompt string) Response {
	text, err := g.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		slog.Warn("ai: generate failed", slog.String("error", err.Error()))
		return Response{Text: FailureText(err), Error: err.Error()}
	}
	return Response{Text: text, Success: true}
}

// FailureText maps a generation error to the message shown to the user.
func FailureText(err error) string {
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return EmptyText
	case errors.Is(err, ErrDisabled):
		return DisabledText
	case errors.Is(err, ErrUpstream),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return FailedText
	}
	return UnexpectedText
}
