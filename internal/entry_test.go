package internal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/e-schultz/floativerse/internal/ai"
	"github.com/e-schultz/floativerse/internal/mirror"
	"github.com/e-schultz/floativerse/internal/noteservice"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(dir, "test.db")
	cfg.Attachments.Path = filepath.Join(dir, "attachments")
	cfg.Vault.Path = filepath.Join(dir, "vault")
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	if _, err := newApplication(nil); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestBuild_VaultDisabled(t *testing.T) {
	cfg := testConfig(t)
	app, err := newApplication([]Option{WithConfig(cfg)})
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.build(context.Background(), quietLogger())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	if c.mirror != nil {
		t.Error("mirror should be nil when the vault is disabled")
	}
	if _, err := os.Stat(cfg.Attachments.Path); err != nil {
		t.Errorf("attachments dir not created: %v", err)
	}
	if _, ok := c.editor.Generator().(ai.Disabled); !ok {
		t.Errorf("generator = %T, want ai.Disabled", c.editor.Generator())
	}
}

func TestBuild_VaultEnabledExportsNotes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Vault.Enabled = true
	gen := ai.GeneratorFunc(func(context.Context, string) (string, error) { return "ok", nil })

	app, err := newApplication([]Option{WithConfig(cfg), WithGenerator(gen)})
	if err != nil {
		t.Fatal(err)
	}
	c, err := app.build(context.Background(), quietLogger())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	n, err := c.notes.CreateNote(context.Background(), cfg.Auth.UserID, noteservice.CreateInput{Title: "Hello", Content: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Vault.Path, mirror.FileName(n.ID))); err != nil {
		t.Errorf("note not mirrored: %v", err)
	}
	if resp := ai.Respond(context.Background(), c.editor.Generator(), "x"); resp.Text != "ok" {
		t.Errorf("generator not injected: %+v", resp)
	}
}

func TestBuild_UnknownAIProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.Provider = "llama"
	app, _ := newApplication([]Option{WithConfig(cfg)})
	if _, err := app.build(context.Background(), quietLogger()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
