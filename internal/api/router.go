package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/e-schultz/floativerse/internal/editorservice"
	"github.com/e-schultz/floativerse/internal/noteservice"
)

// RouterConfig carries the settings of the API router.
type RouterConfig struct {
	// AuthEnabled enforces "Authorization: Bearer <Token>".
	AuthEnabled bool
	Token       string
	// UserID owns every request; there is a single configured user.
	UserID string
	// AttachmentsDir receives uploaded images.
	AttachmentsDir string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
}

// NewRouter creates a chi router with all API routes mounted. It is meant to
// be mounted under /api.
func NewRouter(notes *noteservice.Service, editor *editorservice.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(notes)
	eh := NewEditorHandler(editor)
	fh := NewFunctionHandler(editor.Generator())
	ah := NewAttachmentHandler(cfg.AttachmentsDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token, cfg.UserID))

	// Notes.
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.RecentNotes)
		r.Post("/", h.CreateNote)
		r.Get("/explore", h.ExploreNotes)
		r.Get("/tags", h.Tags)
		r.Get("/{id}", h.GetNote)
		r.Put("/{id}", h.UpdateNote)
		r.Delete("/{id}", h.DeleteNote)
		r.Get("/{id}/headings", h.Headings)
	})
	r.Get("/search", h.Search)

	// Editor commands.
	r.Route("/editor", func(r chi.Router) {
		r.Post("/format", eh.Format)
		r.Post("/indent", eh.Indent)
		r.Post("/detect", eh.Detect)
		r.Post("/headings", eh.Headings)
		r.Post("/context", eh.Context)
		r.Post("/cursor", eh.Cursor)
		r.Post("/complete", eh.Complete)
		r.Post("/execute", eh.Execute)
	})
	r.Get("/commands", eh.Commands)

	// Generation function contract.
	r.Post("/functions/generate-ai-response", fh.Generate)

	r.Post("/attachments", ah.Upload)

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}

// AttachmentRoutes serves uploaded files; mount it at /attachments.
func AttachmentRoutes(dir string) chi.Router {
	ah := NewAttachmentHandler(dir)
	r := chi.NewRouter()
	r.Get("/{filename}", ah.ServeFile)
	return r
}
