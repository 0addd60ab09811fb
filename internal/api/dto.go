package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/e-schultz/floativerse/internal/ai"
	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/models"
	"github.com/e-schultz/floativerse/internal/noteservice"
	"github.com/e-schultz/floativerse/internal/textedit"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title   string   `json:"title" example:"Ideas"`
	Content string   `json:"content" example:"# Ideas\nfirst one"`
	Tags    []string `json:"tags,omitempty"`
}

func (r *CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&r.Tags, validation.Each(validation.Required)),
	)
}

// UpdateNoteRequest is the request body for updating a note. Omitted fields
// are kept.
type UpdateNoteRequest struct {
	Title   *string  `json:"title,omitempty"`
	Content *string  `json:"content,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func (r *UpdateNoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 500)),
		validation.Field(&r.Tags, validation.Each(validation.Required)),
	)
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes"`
	Total int            `json:"total" example:"42"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchHit `json:"results"`
}

// TagsResponse lists distinct tags.
type TagsResponse struct {
	Tags []string `json:"tags"`
}

// SelectionRequest is a buffer with a selection.
type SelectionRequest struct {
	Text           string `json:"text"`
	SelectionStart int    `json:"selection_start"`
	SelectionEnd   int    `json:"selection_end"`
}

// Selection returns the requested selection.
func (r SelectionRequest) Selection() textedit.Selection {
	return textedit.Selection{Start: r.SelectionStart, End: r.SelectionEnd}
}

func (r *SelectionRequest) rules() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&r.SelectionStart, validation.Min(0)),
		validation.Field(&r.SelectionEnd, validation.Min(0)),
	}
}

// FormatRequest applies a Markdown format.
type FormatRequest struct {
	SelectionRequest
	Format string `json:"format" example:"bold"`
}

func (r *FormatRequest) Validate() error {
	return validation.ValidateStruct(r, append(r.rules(),
		validation.Field(&r.Format, validation.Required),
	)...)
}

// IndentRequest indents or outdents the selected lines.
type IndentRequest struct {
	SelectionRequest
	Outdent bool `json:"outdent"`
}

func (r *IndentRequest) Validate() error {
	return validation.ValidateStruct(r, r.rules()...)
}

// CursorRequest is a buffer with a caret and optional widget metrics.
type CursorRequest struct {
	Text    string            `json:"text"`
	Cursor  int               `json:"cursor"`
	Metrics *textedit.Metrics `json:"metrics,omitempty"`
}

func (r *CursorRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Cursor, validation.Min(0)),
	)
}

// TextRequest is a bare buffer.
type TextRequest struct {
	Text string `json:"text"`
}

func (r *TextRequest) Validate() error { return nil }

// ContextRequest asks which sections of Text a query refers to.
type ContextRequest struct {
	Text  string `json:"text"`
	Query string `json:"query" example:"summarize h1"`
}

func (r *ContextRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.Required),
	)
}

// ContextResponse is the extracted context and its status line.
type ContextResponse struct {
	docctx.Result
	Summary string `json:"summary"`
}

// CompleteRequest runs an AI command. CommandText, when set, replaces the
// command found on the caret's line.
type CompleteRequest struct {
	Text        string  `json:"text"`
	Cursor      int     `json:"cursor"`
	CommandText *string `json:"command_text,omitempty"`
}

func (r *CompleteRequest) Validate() error { return nil }

// ExecuteRequest runs a command picked from the menu.
type ExecuteRequest struct {
	SelectionRequest
	CommandID   string `json:"command_id" example:"format.bold"`
	CommandText string `json:"command_text,omitempty" example:"/bo"`
}

func (r *ExecuteRequest) Validate() error {
	return validation.ValidateStruct(r, append(r.rules(),
		validation.Field(&r.CommandID, validation.Required),
	)...)
}

// GenerateRequest is the body of the generation function.
type GenerateRequest ai.FunctionRequest

func (r *GenerateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Prompt, validation.Required),
	)
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"0b6f4c1e.png"`
	Size     int64  `json:"size" example:"12345"`
	URL      string `json:"url" example:"/attachments/0b6f4c1e.png"`
	Markdown string `json:"markdown" example:"![photo](/attachments/0b6f4c1e.png)"`
}
