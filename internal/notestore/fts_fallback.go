//go:build !sqlite_fts5

package notestore

import (
	"database/sql"
	"fmt"

	"github.com/e-schultz/floativerse/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on the notes table.
	return nil
}

func ftsUpsert(_ *sql.Tx, _ models.Note) error {
	return nil
}

func ftsDelete(_ *sql.Tx, _ string) {}

// Search performs a LIKE-based search over title, content and tags.
func (db *DB) Search(userID, query string, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT id, title, substr(content, 1, 200)
		FROM notes
		WHERE (title LIKE ? OR content LIKE ? OR tags LIKE ?)
		  AND (? = '' OR user_id = ?)
		ORDER BY updated_at DESC
		LIMIT ?
	`, like, like, like, userID, userID, limit)
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
