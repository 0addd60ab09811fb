package mirror

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/e-schultz/floativerse/internal/apperr"
	"github.com/e-schultz/floativerse/internal/models"
	"github.com/e-schultz/floativerse/internal/parser"
	"github.com/e-schultz/floativerse/internal/testutil"
)

func testMirror(t *testing.T) (string, *Mirror) {
	t.Helper()
	dir, files := testutil.TestVault(t)
	db := testutil.TestDB(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return dir, New(db, files, logger, "local")
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func exists(m *Mirror, id string) bool {
	_, err := m.store.Get(id)
	return err == nil
}

func TestExportAndImportRoundTrip(t *testing.T) {
	dir, m := testMirror(t)
	now := time.Now().UTC().Truncate(time.Second)
	n := models.Note{
		ID: "abc", UserID: "u9", Title: "Round", Content: "# Round\ntrip\n",
		Tags: []string{"x"}, CreatedAt: now, UpdatedAt: now,
	}
	if err := m.Export(n); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "abc.md"))
	if err != nil {
		t.Fatalf("mirror file missing: %v", err)
	}

	got, created, err := m.Import("abc.md", data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !created {
		t.Error("expected created")
	}
	if got.Content != n.Content || got.UserID != "u9" || got.Title != "Round" || !got.CreatedAt.Equal(now) {
		t.Errorf("imported %+v", got)
	}
}

func TestImportPlainFile(t *testing.T) {
	_, m := testMirror(t)
	got, _, err := m.Import("idea.md", []byte("no heading, just #thoughts\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.ID != "idea" || got.Title != "idea" || got.UserID != "local" {
		t.Errorf("imported %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "thoughts" {
		t.Errorf("tags = %v", got.Tags)
	}

	if _, _, err := m.Import("sub/x.md", []byte("x")); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("expected ErrInvalid for nested path, got %v", err)
	}
}

func TestRemoveMissingFile(t *testing.T) {
	_, m := testMirror(t)
	if err := m.Remove("never-written"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestSyncImportsAndExports(t *testing.T) {
	dir, m := testMirror(t)
	_ = os.WriteFile(filepath.Join(dir, "disk.md"), []byte("# From Disk\n"), 0o644)

	now := time.Now()
	dbOnly := models.Note{ID: "db-only", UserID: "local", Title: "DB", Content: "x", CreatedAt: now, UpdatedAt: now}
	if err := m.store.Insert(dbOnly); err != nil {
		t.Fatal(err)
	}

	if err := m.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	got, err := m.store.Get("disk")
	if err != nil {
		t.Fatalf("disk file not imported: %v", err)
	}
	if got.Title != "From Disk" {
		t.Errorf("title = %q", got.Title)
	}
	data, err := os.ReadFile(filepath.Join(dir, "db-only.md"))
	if err != nil {
		t.Fatalf("db-only note not exported: %v", err)
	}
	res, _ := parser.Parse(data)
	if res.Body != "x" {
		t.Errorf("exported body = %q", res.Body)
	}
}

func TestWatcher_NewFileImported(t *testing.T) {
	dir, m := testMirror(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	go m.Watch(ctx, func(kind, id string) {
		mu.Lock()
		events = append(events, kind+":"+id)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "new.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return exists(m, "new")
	}, "new file not imported by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new" {
				return true
			}
		}
		return false
	}, "expected created:new callback")
}

func TestWatcher_DeleteRemovesNote(t *testing.T) {
	dir, m := testMirror(t)
	_ = os.WriteFile(filepath.Join(dir, "del.md"), []byte("# Delete Me"), 0o644)
	if err := m.Sync(); err != nil {
		t.Fatal(err)
	}
	if !exists(m, "del") {
		t.Fatal("precondition: file should be imported")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Watch(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(dir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !exists(m, "del")
	}, "deleted file still in store")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dir, m := testMirror(t)
	_ = os.WriteFile(filepath.Join(dir, "old.md"), []byte("# Rename"), 0o644)
	if err := m.Sync(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Watch(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(dir, "old.md"), filepath.Join(dir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !exists(m, "old") && exists(m, "renamed")
	}, "rename reconciliation failed: old note should be removed and new one imported")
}
