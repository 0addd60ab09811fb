package notestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/models"
)

const noteColumns = `id, user_id, title, content, tags, checksum, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(r rowScanner) (models.Note, error) {
	var (
		n    models.Note
		tags string
	)
	if err := r.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &tags, &n.Checksum, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return models.Note{}, err
	}
	if err := json.Unmarshal([]byte(tags), &n.Tags); err != nil || n.Tags == nil {
		n.Tags = []string{}
	}
	return n, nil
}

func encodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return string(b)
}

// Insert stores a new note. An existing id yields apperr.ErrAlreadyExists.
func (db *DB) Insert(n models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Content, encodeTags(n.Tags), n.Checksum, n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("notestore: insert %s: %w", n.ID, apperr.ErrAlreadyExists)
		}
		return fmt.Errorf("notestore: insert: %w", err)
	}
	if err := ftsUpsert(tx, n); err != nil {
		return err
	}
	return tx.Commit()
}

// Update overwrites an existing note. A missing id yields apperr.ErrNotFound.
func (db *DB) Update(n models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		UPDATE notes SET
			title      = ?,
			content    = ?,
			tags       = ?,
			checksum   = ?,
			updated_at = ?
		WHERE id = ?
	`, n.Title, n.Content, encodeTags(n.Tags), n.Checksum, n.UpdatedAt.UTC(), n.ID)
	if err != nil {
		return fmt.Errorf("notestore: update: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("notestore: update %s: %w", n.ID, apperr.ErrNotFound)
	}
	if err := ftsUpsert(tx, n); err != nil {
		return err
	}
	return tx.Commit()
}

// Upsert inserts or replaces a note. The mirror uses it to import files.
func (db *DB) Upsert(n models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id    = excluded.user_id,
			title      = excluded.title,
			content    = excluded.content,
			tags       = excluded.tags,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, n.ID, n.UserID, n.Title, n.Content, encodeTags(n.Tags), n.Checksum, n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("notestore: upsert: %w", err)
	}
	if err := ftsUpsert(tx, n); err != nil {
		return err
	}
	return tx.Commit()
}

// Get returns a note by id.
func (db *DB) Get(id string) (models.Note, error) {
	n, err := scanNote(db.conn.QueryRow(`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, fmt.Errorf("notestore: get %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("notestore: get: %w", err)
	}
	return n, nil
}

// Delete removes a note and its search entry. A missing id yields
// apperr.ErrNotFound.
func (db *DB) Delete(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("notestore: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	res, err := tx.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("notestore: delete: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return fmt.Errorf("notestore: delete %s: %w", id, apperr.ErrNotFound)
	}
	return tx.Commit()
}

// List returns notes ordered by most recently updated, plus the total count
// matching the filter.
func (db *DB) List(q ListQuery) ([]models.Note, int, error) {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	var (
		where []string
		args  []any
	)
	if q.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, q.UserID)
	}
	if q.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(notes.tags) WHERE json_each.value = ?)")
		args = append(args, q.Tag)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("notestore: count: %w", err)
	}

	rows, err := db.conn.Query(`SELECT `+noteColumns+` FROM notes`+clause+
		` ORDER BY updated_at DESC, id LIMIT ? OFFSET ?`, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("notestore: list: %w", err)
	}
	defer rows.Close()

	out := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("notestore: list scan: %w", err)
		}
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// Tags returns the distinct tags in use, sorted. An empty userID covers
// every user.
func (db *DB) Tags(userID string) ([]string, error) {
	query := `SELECT DISTINCT json_each.value FROM notes, json_each(notes.tags)`
	var args []any
	if userID != "" {
		query += ` WHERE notes.user_id = ?`
		args = append(args, userID)
	}
	rows, err := db.conn.Query(query+` ORDER BY 1`, args...)
	if err != nil {
		return nil, fmt.Errorf("notestore: tags: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

// AllChecksums maps every note id to its stored checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("notestore: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}
