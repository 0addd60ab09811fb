package notestore

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "floativerse-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func note(id, user, title string, updated time.Time, tags ...string) models.Note {
	return models.Note{
		ID:        id,
		UserID:    user,
		Title:     title,
		Content:   "# " + title + "\nbody of " + id,
		Tags:      tags,
		Checksum:  "cs-" + id,
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestInsertAndGet(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC().Truncate(time.Second)
	if err := db.Insert(note("n1", "u1", "Hello", now, "go", "test")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := db.Get("n1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Hello" || got.UserID != "u1" || got.Checksum != "cs-n1" {
		t.Errorf("got %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "go" {
		t.Errorf("tags = %v", got.Tags)
	}
	if !got.UpdatedAt.Equal(now) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, now)
	}
}

func TestInsertDuplicate(t *testing.T) {
	db := testDB(t)
	n := note("dup", "u1", "Dup", time.Now())
	if err := db.Insert(n); err != nil {
		t.Fatal(err)
	}
	if err := db.Insert(n); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.Get("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	_ = db.Insert(note("up", "u1", "Old", now))

	n := note("up", "u1", "New", now.Add(time.Minute), "new")
	n.Checksum = "2"
	if err := db.Update(n); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := db.Get("up")
	if got.Title != "New" || got.Checksum != "2" {
		t.Errorf("got %+v", got)
	}

	if err := db.Update(note("ghost", "u1", "x", now)); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsert(t *testing.T) {
	db := testDB(t)
	now := time.Now()
	if err := db.Upsert(note("m", "u1", "First", now)); err != nil {
		t.Fatal(err)
	}
	if err := db.Upsert(note("m", "u1", "Second", now)); err != nil {
		t.Fatal(err)
	}
	got, _ := db.Get("m")
	if got.Title != "Second" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestDelete(t *testing.T) {
	db := testDB(t)
	_ = db.Insert(note("del", "u1", "Del", time.Now()))

	if err := db.Delete("del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := db.Get("del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("deleted note still present: %v", err)
	}
	if err := db.Delete("del"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrderAndFilters(t *testing.T) {
	db := testDB(t)
	base := time.Now().Add(-time.Hour)
	_ = db.Insert(note("a", "u1", "A", base, "work"))
	_ = db.Insert(note("b", "u1", "B", base.Add(2*time.Minute)))
	_ = db.Insert(note("c", "u2", "C", base.Add(time.Minute), "work"))

	all, total, err := db.List(ListQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("total = %d, len = %d", total, len(all))
	}
	if all[0].ID != "b" || all[1].ID != "c" || all[2].ID != "a" {
		t.Errorf("order = %s,%s,%s; want b,c,a", all[0].ID, all[1].ID, all[2].ID)
	}

	mine, total, _ := db.List(ListQuery{UserID: "u1"})
	if total != 2 || len(mine) != 2 {
		t.Errorf("user filter: total = %d", total)
	}

	tagged, total, _ := db.List(ListQuery{Tag: "work"})
	if total != 2 || tagged[0].ID != "c" {
		t.Errorf("tag filter: total = %d", total)
	}

	page, total, _ := db.List(ListQuery{Limit: 1, Offset: 1})
	if total != 3 || len(page) != 1 || page[0].ID != "c" {
		t.Errorf("paging: %+v total %d", page, total)
	}
}

func TestTags(t *testing.T) {
	db := testDB(t)
	_ = db.Insert(note("a", "u1", "A", time.Now(), "zeta", "alpha"))
	_ = db.Insert(note("b", "u2", "B", time.Now(), "alpha", "beta"))

	tags, err := db.Tags("")
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 3 || tags[0] != "alpha" || tags[2] != "zeta" {
		t.Errorf("tags = %v", tags)
	}

	tags, _ = db.Tags("u2")
	if len(tags) != 2 {
		t.Errorf("user tags = %v", tags)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.Insert(note("a", "u1", "A", time.Now()))
	_ = db.Insert(note("b", "u1", "B", time.Now()))

	cs, err := db.AllChecksums()
	if err != nil {
		t.Fatal(err)
	}
	if len(cs) != 2 || cs["a"] != "cs-a" {
		t.Errorf("checksums = %v", cs)
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	n := note("s", "u1", "Search Me", time.Now())
	n.Content = "uniqueword appears here"
	_ = db.Insert(n)
	_ = db.Insert(note("other", "u2", "Other", time.Now()))

	results, err := db.Search("", "uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "s" {
		t.Errorf("search results = %+v, want 1 hit for s", results)
	}

	results, _ = db.Search("u2", "uniqueword", 10)
	if len(results) != 0 {
		t.Errorf("search scoped to u2 returned %+v", results)
	}
}
