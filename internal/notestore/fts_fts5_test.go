//go:build sqlite_fts5

package notestore

import (
	"strings"
	"testing"
	"time"
)

func TestFTS5_TableExists(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes_fts`).Scan(&count); err != nil {
		t.Fatalf("notes_fts table missing: %v", err)
	}
}

func TestFTS5_SearchWithSnippet(t *testing.T) {
	db := testDB(t)
	n := note("fts", "u1", "FTS Note", time.Now(), "search")
	n.Content = "floativerse provides powerful full-text search capabilities."
	if err := db.Insert(n); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	results, err := db.Search("", "powerful", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !strings.Contains(results[0].Snippet, "<b>powerful</b>") {
		t.Errorf("snippet = %q", results[0].Snippet)
	}
}

func TestFTS5_DeleteRemovesEntry(t *testing.T) {
	db := testDB(t)
	n := note("gone", "u1", "Gone", time.Now())
	n.Content = "ephemeral"
	_ = db.Insert(n)
	_ = db.Delete("gone")

	results, _ := db.Search("", "ephemeral", 10)
	if len(results) != 0 {
		t.Errorf("expected no results after delete, got %d", len(results))
	}
}
