// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/e-schultz/floativerse/internal/ai"
	"github.com/e-schultz/floativerse/internal/api"
	"github.com/e-schultz/floativerse/internal/editorservice"
	"github.com/e-schultz/floativerse/internal/mcpserver"
	"github.com/e-schultz/floativerse/internal/mirror"
	"github.com/e-schultz/floativerse/internal/noteservice"
	"github.com/e-schultz/floativerse/internal/notestore"
	"github.com/e-schultz/floativerse/internal/sse"
	"github.com/e-schultz/floativerse/internal/storage"
)

// components holds everything the HTTP and MCP front ends share.
type components struct {
	db          *notestore.DB
	mirror      *mirror.Mirror
	broker      *sse.Broker
	notes       *noteservice.Service
	editor      *editorservice.Service
	attachments storage.Provider
}

func (c *components) Close() {
	if c.broker != nil {
		c.broker.Close()
	}
	if c.db != nil {
		_ = c.db.Close()
	}
}

func (a *application) build(ctx context.Context, logger *slog.Logger) (*components, error) {
	cfg := a.config
	c := &components{}

	db, err := notestore.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init notestore: %w", err)
	}
	c.db = db

	if err := os.MkdirAll(cfg.Attachments.Path, 0o755); err != nil {
		c.Close()
		return nil, fmt.Errorf("create attachments dir: %w", err)
	}
	if c.attachments, err = storage.NewFS(cfg.Attachments.Path); err != nil {
		c.Close()
		return nil, fmt.Errorf("init attachments: %w", err)
	}

	c.broker = sse.NewBroker(cfg.Events.ListThrottle)
	opts := []noteservice.Option{
		noteservice.WithPublisher(c.broker),
		noteservice.WithLogger(logger),
	}

	if cfg.Vault.Enabled {
		if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
			c.Close()
			return nil, fmt.Errorf("create vault dir: %w", err)
		}
		files, err := storage.NewFS(cfg.Vault.Path)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("init vault: %w", err)
		}
		c.mirror = mirror.New(db, files, logger, cfg.Auth.UserID)
		if err := c.mirror.Sync(); err != nil {
			logger.Warn("mirror: initial sync failed", slog.String("error", err.Error()))
		}
		opts = append(opts, noteservice.WithMirror(c.mirror))
	}
	c.notes = noteservice.NewService(db, opts...)

	gen := a.generator
	if gen == nil {
		if gen, err = ai.New(ctx, cfg.AI.Generator()); err != nil {
			c.Close()
			return nil, fmt.Errorf("init ai: %w", err)
		}
	}
	c.editor = editorservice.New(gen, logger)

	return c, nil
}

func newLogger(cfg *Config, out *os.File) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("vault_enabled", cfg.Vault.Enabled),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("ai_provider", cfg.AI.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	apiRouter := api.NewRouter(c.notes, c.editor, api.RouterConfig{
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		UserID:         cfg.Auth.UserID,
		AttachmentsDir: c.attachments.Root(),
		Events:         c.broker,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if err := c.db.Ping(); err != nil {
			http.Error(w, `{"status":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)
	r.Mount("/attachments", api.AttachmentRoutes(c.attachments.Root()))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if c.mirror != nil {
		g.Go(func() error {
			if err := c.mirror.Watch(gCtx, c.broker.PublishNoteEvent); err != nil {
				logger.Error("watcher: failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops along with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	c, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if c.mirror != nil {
		go func() {
			if err := c.mirror.Watch(ctx, nil); err != nil {
				logger.Error("watcher: failed", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("mcp: serving on stdio", slog.String("user_id", cfg.Auth.UserID))
	return mcpserver.New(c.notes, c.editor, cfg.Auth.UserID, c.attachments).ServeStdio()
}
