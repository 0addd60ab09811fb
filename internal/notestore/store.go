// Package notestore persists notes in SQLite, with FTS5 full-text search when
// built with the sqlite_fts5 tag and a LIKE fallback otherwise.
package notestore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/e-schultz/floativerse/internal/models"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	title      TEXT NOT NULL DEFAULT '',
	content    TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	checksum   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_user_updated ON notes(user_id, updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_notes_updated ON notes(updated_at DESC);
`

// ListQuery filters and pages List. An empty UserID lists every user's notes.
type ListQuery struct {
	UserID string
	Tag    string
	Limit  int
	Offset int
}

// Store is the persistence contract consumed by the note service and the
// mirror. Consumers depend on it rather than on *DB.
type Store interface {
	Insert(n models.Note) error
	Update(n models.Note) error
	Upsert(n models.Note) error
	Get(id string) (models.Note, error)
	Delete(id string) error
	List(q ListQuery) ([]models.Note, int, error)
	Search(userID, query string, limit int) ([]models.SearchHit, error)
	Tags(userID string) ([]string, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

var _ Store = (*DB)(nil)

// DB wraps a sql.DB with note operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("notestore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}
