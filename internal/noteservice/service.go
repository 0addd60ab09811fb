// Package noteservice coordinates note persistence, the on-disk mirror and
// change events.
package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/checksum"
	"github.com/e-schultz/floativerse/internal/models"
	"github.com/e-schultz/floativerse/internal/notestore"
	"github.com/e-schultz/floativerse/internal/parser"
	"github.com/e-schultz/floativerse/internal/sections"
)

// Mirror receives every stored note. *mirror.Mirror implements it.
type Mirror interface {
	Export(n models.Note) error
	Remove(id string) error
}

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishNoteEvent(kind, id string)
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Excerpt   string    `json:"excerpt"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateInput holds the fields of a new note. Nil Tags are taken from the
// #tags written in Content.
type CreateInput struct {
	Title   string
	Content string
	Tags    []string
}

// UpdateInput holds the fields to change; nil fields are kept.
type UpdateInput struct {
	Title   *string
	Content *string
	Tags    []string
	// IfMatch, when set, must equal the note's current checksum.
	IfMatch string
}

const excerptLen = 160

// Service coordinates the note store, the mirror and events.
type Service struct {
	store  notestore.Store
	mirror Mirror
	events Publisher
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithMirror exports every mutation to m.
func WithMirror(m Mirror) Option {
	return func(s *Service) { s.mirror = m }
}

// WithPublisher announces every mutation on p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger used for mirror failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new note service.
func NewService(store notestore.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetNote returns any user's note by id.
func (s *Service) GetNote(_ context.Context, id string) (*models.Note, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNote stores a new note owned by userID.
func (s *Service) CreateNote(_ context.Context, userID string, in CreateInput) (*models.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalid)
	}
	now := s.now().UTC()
	n := models.Note{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   in.Content,
		Tags:      normalizeTags(in.Tags, in.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.stamp(&n); err != nil {
		return nil, err
	}
	if err := s.store.Insert(n); err != nil {
		return nil, err
	}
	s.afterWrite("created", n)
	return &n, nil
}

// UpdateNote changes a note owned by userID with optimistic concurrency.
// Notes of other users are reported as not found.
func (s *Service) UpdateNote(_ context.Context, userID, id string, in UpdateInput) (*models.Note, error) {
	n, err := s.owned(userID, id)
	if err != nil {
		return nil, err
	}
	if in.IfMatch != "" && in.IfMatch != n.Checksum {
		return nil, apperr.ErrConflict
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title is required", apperr.ErrInvalid)
		}
		n.Title = title
	}
	if in.Content != nil {
		n.Content = *in.Content
		if in.Tags == nil {
			n.Tags = normalizeTags(nil, n.Content)
		}
	}
	if in.Tags != nil {
		n.Tags = normalizeTags(in.Tags, n.Content)
	}
	n.UpdatedAt = s.now().UTC()
	if err := s.stamp(&n); err != nil {
		return nil, err
	}
	if err := s.store.Update(n); err != nil {
		return nil, err
	}
	s.afterWrite("updated", n)
	return &n, nil
}

// DeleteNote removes a note owned by userID and its mirror file.
func (s *Service) DeleteNote(_ context.Context, userID, id string) error {
	if _, err := s.owned(userID, id); err != nil {
		return err
	}
	if err := s.store.Delete(id); err != nil {
		return err
	}
	if s.mirror != nil {
		if err := s.mirror.Remove(id); err != nil {
			s.logger.Warn("noteservice: mirror remove failed", slog.String("id", id), slog.String("error", err.Error()))
		}
	}
	if s.events != nil {
		s.events.PublishNoteEvent("deleted", id)
	}
	return nil
}

// RecentNotes lists userID's notes, most recently updated first.
func (s *Service) RecentNotes(_ context.Context, userID string, limit, offset int, tag string) ([]NoteListItem, int, error) {
	return s.list(notestore.ListQuery{UserID: userID, Tag: tag, Limit: limit, Offset: offset})
}

// ExploreNotes lists every user's notes, most recently updated first.
func (s *Service) ExploreNotes(_ context.Context, limit, offset int, tag string) ([]NoteListItem, int, error) {
	return s.list(notestore.ListQuery{Tag: tag, Limit: limit, Offset: offset})
}

// Search runs a full-text search over userID's notes.
func (s *Service) Search(_ context.Context, userID, query string, limit int) ([]models.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return []models.SearchHit{}, nil
	}
	hits, err := s.store.Search(userID, query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(hits), nil
}

// Tags returns the distinct tags used by userID.
func (s *Service) Tags(_ context.Context, userID string) ([]string, error) {
	tags, err := s.store.Tags(userID)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(tags), nil
}

// Headings parses the heading outline of a note's content.
func (s *Service) Headings(_ context.Context, id string) ([]sections.Section, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(sections.Extract(n.Content)), nil
}

func (s *Service) owned(userID, id string) (models.Note, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return models.Note{}, err
	}
	if userID != "" && n.UserID != userID {
		return models.Note{}, apperr.ErrNotFound
	}
	return n, nil
}

func (s *Service) list(q notestore.ListQuery) ([]NoteListItem, int, error) {
	rows, total, err := s.store.List(q)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			ID:        r.ID,
			UserID:    r.UserID,
			Title:     r.Title,
			Excerpt:   excerpt(r.Content),
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// stamp sets the checksum of the note's mirror rendering.
func (s *Service) stamp(n *models.Note) error {
	data, err := parser.Render(*n)
	if err != nil {
		return err
	}
	n.Checksum = checksum.Sum(data)
	return nil
}

func (s *Service) afterWrite(kind string, n models.Note) {
	if s.mirror != nil {
		if err := s.mirror.Export(n); err != nil {
			s.logger.Warn("noteservice: mirror export failed", slog.String("id", n.ID), slog.String("error", err.Error()))
		}
	}
	if s.events != nil {
		s.events.PublishNoteEvent(kind, n.ID)
	}
}

func normalizeTags(tags []string, content string) []string {
	if tags == nil {
		return parser.InlineTags(content)
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// excerpt returns the first excerptLen runes of content with whitespace
// collapsed.
func excerpt(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	r := []rune(flat)
	if len(r) <= excerptLen {
		return flat
	}
	return string(r[:excerptLen]) + "…"
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
