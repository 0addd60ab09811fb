package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/e-schultz/floativerse/internal/commands"
	"github.com/e-schultz/floativerse/internal/docctx"
	"github.com/e-schultz/floativerse/internal/editorservice"
)

// EditorHandler exposes the editor's text commands.
type EditorHandler struct {
	svc *editorservice.Service
}

// NewEditorHandler creates a new EditorHandler.
func NewEditorHandler(svc *editorservice.Service) *EditorHandler {
	return &EditorHandler{svc: svc}
}

// Format handles POST /api/editor/format.
func (h *EditorHandler) Format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	edit, err := h.svc.Format(req.Text, req.Selection(), req.Format)
	if err != nil {
		writeServiceError(w, "format", err)
		return
	}
	writeJSON(w, http.StatusOK, edit)
}

// Indent handles POST /api/editor/indent.
func (h *EditorHandler) Indent(w http.ResponseWriter, r *http.Request) {
	var req IndentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Indent(req.Text, req.Selection(), req.Outdent))
}

// Detect handles POST /api/editor/detect.
func (h *EditorHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req CursorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Detect(req.Text, req.Cursor, req.Metrics))
}

// Headings handles POST /api/editor/headings.
func (h *EditorHandler) Headings(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"headings": h.svc.Headings(req.Text)})
}

// Context handles POST /api/editor/context.
func (h *EditorHandler) Context(w http.ResponseWriter, r *http.Request) {
	var req ContextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.svc.Context(req.Text, req.Query)
	if res.Sections == nil {
		res.Sections, res.Labels = []string{}, []string{}
	}
	writeJSON(w, http.StatusOK, ContextResponse{Result: res, Summary: res.Summary()})
}

// Cursor handles POST /api/editor/cursor.
func (h *EditorHandler) Cursor(w http.ResponseWriter, r *http.Request) {
	var req CursorRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Cursor(req.Text, req.Cursor, req.Metrics))
}

// Commands handles GET /api/commands?filter=.
func (h *EditorHandler) Commands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sections": h.svc.Commands(r.URL.Query().Get("filter"))})
}

// Complete handles POST /api/editor/complete.
//
//	@Summary		Answer the AI command on the caret's line
//	@Tags			editor
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CompleteRequest	true	"Buffer and caret"
//	@Success		200		{object}	editorservice.Result
//	@Failure		422		{object}	errResponse	"No query after the command"
//	@Failure		502		{object}	editorservice.Result	"Generation failed; buffer unchanged"
//	@Security		BearerAuth
//	@Router			/editor/complete [post]
func (h *EditorHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Complete(r.Context(), req.Text, req.Cursor, req.CommandText)
	writeEditorResult(w, res, err)
}

// Execute handles POST /api/editor/execute.
func (h *EditorHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req ExecuteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Execute(r.Context(), editorservice.ExecuteRequest{
		Text:        req.Text,
		Selection:   req.Selection(),
		CommandID:   req.CommandID,
		CommandText: req.CommandText,
	})
	writeEditorResult(w, res, err)
}

func writeEditorResult(w http.ResponseWriter, res editorservice.Result, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, docctx.ErrEmptyPrompt):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(docctx.ErrEmptyPrompt.Error()))
	case errors.Is(err, docctx.ErrUnknownCommand), errors.Is(err, docctx.ErrNoCursor):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, commands.ErrUnknownCommand):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, editorservice.ErrGeneration):
		writeJSON(w, http.StatusBadGateway, res)
	default:
		slog.Error("api: editor command failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
