package api

import (
	"net/http"

	"github.com/e-schultz/floativerse/internal/ai"
)

// FunctionHandler serves the generation function contract, so one instance
// can act as another's "function" AI provider.
type FunctionHandler struct {
	gen ai.Generator
}

// NewFunctionHandler creates a new FunctionHandler.
func NewFunctionHandler(gen ai.Generator) *FunctionHandler {
	return &FunctionHandler{gen: gen}
}

// Generate handles POST /api/functions/generate-ai-response.
//
//	@Summary		Generate a response for a prompt
//	@Tags			functions
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateRequest			true	"Prompt"
//	@Success		200		{object}	ai.FunctionResponse
//	@Failure		500		{object}	ai.FunctionResponse
//	@Router			/functions/generate-ai-response [post]
func (h *FunctionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp := ai.Respond(r.Context(), h.gen, req.Prompt)
	if !resp.Success {
		writeJSON(w, http.StatusInternalServerError, ai.FunctionResponse{Error: resp.Error})
		return
	}
	writeJSON(w, http.StatusOK, ai.FunctionResponse{GeneratedText: resp.Text})
}
