package mirror

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/e-schultz/floativerse/internal/apperr"
)

const reconcileDelay = 200 * time.Millisecond

// Watch processes file changes in the mirror directory until ctx is
// cancelled, calling cb (if non-nil) after each store change. Only top-level
// "<id>.md" files are considered. Rename events delete the old note at once
// and schedule a short reconciliation pass that imports the new file.
func (m *Mirror) Watch(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := m.files.Root()
	if err := w.Add(root); err != nil {
		return err
	}
	m.logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, id string) {
		if cb != nil && kind != "" {
			cb(kind, id)
		}
	}

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time
	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			m.logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			m.reconcile(notify)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			id, ok := idFromPath(rel)
			if !ok {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				notify(m.importPath(rel, "watcher"), id)

			case ev.Op&fsnotify.Remove != 0:
				notify(m.forget(id, "watcher"), id)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old path only; the new
				// path arrives as a Create if it stays in the directory.
				notify(m.forget(id, "watcher"), id)
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// forget deletes the note whose file disappeared.
func (m *Mirror) forget(id, op string) string {
	err := m.store.Delete(id)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return ""
	case err != nil:
		m.logger.Warn(op+": delete failed", slog.String("id", id), slog.String("error", err.Error()))
		return ""
	}
	m.logger.Debug(op+": deleted", slog.String("id", id))
	return "deleted"
}

// reconcile imports files that changed or appeared while events were being
// coalesced.
func (m *Mirror) reconcile(notify func(kind, id string)) {
	metas, err := m.files.List("")
	if err != nil {
		m.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}
	checksums, err := m.store.AllChecksums()
	if err != nil {
		m.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	for _, meta := range metas {
		id, ok := idFromPath(meta.Path)
		if !ok || checksums[id] == meta.Checksum {
			continue
		}
		notify(m.importPath(meta.Path, "reconcile"), id)
	}
}
