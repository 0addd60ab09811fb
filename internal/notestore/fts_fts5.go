//go:build sqlite_fts5

package notestore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/e-schultz/floativerse/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			id UNINDEXED,
			user_id UNINDEXED,
			title,
			content,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, n models.Note) error {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE id = ?`, n.ID)
	_, err := tx.Exec(`INSERT INTO notes_fts (id, user_id, title, content, tags) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Title, n.Content, strings.Join(n.Tags, " "))
	if err != nil {
		return fmt.Errorf("notestore: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM notes_fts WHERE id = ?`, id)
}

// Search performs an FTS5 full-text search and returns hits with snippets.
func (db *DB) Search(userID, query string, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT id,
		       title,
		       snippet(notes_fts, 3, '<b>', '</b>', '...', 64)
		FROM notes_fts
		WHERE notes_fts MATCH ?
		  AND (? = '' OR user_id = ?)
		ORDER BY rank
		LIMIT ?
	`, query, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("notestore: search: %w", err)
	}
	defer rows.Close()

	out := []models.SearchHit{}
	for rows.Next() {
		var h models.SearchHit
		if err := rows.Scan(&h.ID, &h.Title, &h.Snippet); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
