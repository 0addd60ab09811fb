// Package mirror keeps a directory of Markdown files in step with the note
// store: every note is written as <id>.md with YAML frontmatter, and edits
// made to those files on disk are imported back.
package mirror

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/checksum"
	"github.com/e-schultz/floativerse/internal/models"
	"github.com/e-schultz/floativerse/internal/notestore"
	"github.com/e-schultz/floativerse/internal/parser"
	"github.com/e-schultz/floativerse/internal/storage"
)

// EventCallback is called after a file-driven store change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind, id string)

// Mirror connects a note store to a directory of files.
type Mirror struct {
	store       notestore.Store
	files       storage.Provider
	logger      *slog.Logger
	defaultUser string
	now         func() time.Time
}

// New creates a mirror. Files without a user_id in their frontmatter are
// imported for defaultUser.
func New(store notestore.Store, files storage.Provider, logger *slog.Logger, defaultUser string) *Mirror {
	return &Mirror{
		store:       store,
		files:       files,
		logger:      logger,
		defaultUser: defaultUser,
		now:         time.Now,
	}
}

// FileName returns the mirror file name of a note id.
func FileName(id string) string {
	return id + ".md"
}

// idFromPath maps a top-level "<id>.md" path to its id.
func idFromPath(p string) (string, bool) {
	if strings.Contains(p, "/") || !strings.HasSuffix(p, ".md") || strings.HasPrefix(p, ".") {
		return "", false
	}
	id := strings.TrimSuffix(p, ".md")
	return id, id != ""
}

// Export writes n to its mirror file.
func (m *Mirror) Export(n models.Note) error {
	data, err := parser.Render(n)
	if err != nil {
		return err
	}
	if err := m.files.Write(FileName(n.ID), data); err != nil {
		return fmt.Errorf("mirror: export %s: %w", n.ID, err)
	}
	return nil
}

// Remove deletes the mirror file of id. A missing file is not an error.
func (m *Mirror) Remove(id string) error {
	err := m.files.Delete(FileName(id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("mirror: remove %s: %w", id, err)
	}
	return nil
}

// Import parses a mirror file and upserts it into the store. It reports
// whether the note was new.
func (m *Mirror) Import(p string, data []byte) (models.Note, bool, error) {
	id, ok := idFromPath(p)
	if !ok {
		return models.Note{}, false, fmt.Errorf("mirror: import %s: %w", p, apperr.ErrInvalid)
	}
	res, err := parser.Parse(data)
	if err != nil {
		return models.Note{}, false, err
	}

	existing, getErr := m.store.Get(id)
	created := errors.Is(getErr, apperr.ErrNotFound)
	if getErr != nil && !created {
		return models.Note{}, false, getErr
	}

	now := m.now().UTC()
	n := models.Note{
		ID:        id,
		UserID:    m.defaultUser,
		Title:     res.Title,
		Content:   res.Body,
		Tags:      res.Tags,
		Checksum:  checksum.Sum(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !created {
		n.UserID = existing.UserID
		n.CreatedAt = existing.CreatedAt
	}
	if fm := res.Frontmatter; fm != nil {
		if fm.UserID != "" {
			n.UserID = fm.UserID
		}
		if !fm.Created.IsZero() {
			n.CreatedAt = fm.Created
		}
	}
	if n.Title == "" {
		n.Title = id
	}

	if err := m.store.Upsert(n); err != nil {
		return models.Note{}, false, err
	}
	return n, created, nil
}

// Sync reconciles the directory with the store at startup. Files that are
// new or changed since the last import are imported; notes without a file
// are exported. Sync never deletes notes: removing a file only counts while
// the watcher is running.
func (m *Mirror) Sync() error {
	metas, err := m.files.List("")
	if err != nil {
		return err
	}
	checksums, err := m.store.AllChecksums()
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(metas))
	for _, meta := range metas {
		id, ok := idFromPath(meta.Path)
		if !ok {
			continue
		}
		onDisk[id] = struct{}{}
		if checksums[id] == meta.Checksum {
			continue
		}
		m.importPath(meta.Path, "sync")
	}

	for id := range checksums {
		if _, ok := onDisk[id]; ok {
			continue
		}
		n, err := m.store.Get(id)
		if err != nil {
			m.logger.Warn("sync: get failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		if err := m.Export(n); err != nil {
			m.logger.Warn("sync: export failed", slog.String("id", id), slog.String("error", err.Error()))
		} else {
			m.logger.Debug("sync: exported", slog.String("id", id))
		}
	}
	return nil
}

// importPath reads and imports one file, logging failures under op. It
// returns the event kind, or "" when nothing changed.
func (m *Mirror) importPath(p, op string) string {
	data, err := m.files.Read(p)
	if err != nil {
		m.logger.Warn(op+": read failed", slog.String("path", p), slog.String("error", err.Error()))
		return ""
	}
	id, _ := idFromPath(p)
	if stored, err := m.store.Get(id); err == nil && stored.Checksum == checksum.Sum(data) {
		return ""
	}
	n, created, err := m.Import(p, data)
	if err != nil {
		m.logger.Warn(op+": import failed", slog.String("path", path.Clean(p)), slog.String("error", err.Error()))
		return ""
	}
	m.logger.Debug(op+": imported", slog.String("id", n.ID))
	if created {
		return "created"
	}
	return "updated"
}
