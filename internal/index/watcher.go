package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bylinehq/byline/internal/store"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// renameSettle is how long the watcher waits after a rename burst before
// reconciling the index against the content tree.
const renameSettle = 200 * time.Millisecond

// Watch follows the content root with fsnotify and keeps the index in step
// with file changes until ctx is cancelled. cb, when non-nil, fires after
// every successful index mutation.
//
// Directories created while watching are picked up automatically. A rename
// removes the old entry right away and schedules a debounced reconcile
// pass, since fsnotify only reports the old path.
func Watch(ctx context.Context, db *DB, st store.Provider, contentRoot string, logger *slog.Logger, cb EventCallback) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	w := &watcher{db: db, st: st, root: contentRoot, logger: logger, cb: cb, fsw: fsw}
	if err := w.watchTree(contentRoot); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", contentRoot))
	return w.run(ctx)
}

type watcher struct {
	db     *DB
	st     store.Provider
	root   string
	logger *slog.Logger
	cb     EventCallback
	fsw    *fsnotify.Watcher

	settle   *time.Timer
	settleCh <-chan time.Time
}

func (w *watcher) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if w.settle != nil {
				w.settle.Stop()
			}
			w.logger.Info("watcher: stopped")
			return nil

		case <-w.settleCh:
			w.reconcile()

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.handleNewDir(ev.Name)
			return
		}
	}

	if !strings.HasSuffix(ev.Name, ".md") {
		return
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		kind := "updated"
		if ev.Op&fsnotify.Create != 0 {
			kind = "created"
		}
		w.reindex(rel, kind)

	case ev.Op&fsnotify.Remove != 0:
		if err := w.db.DeleteArticle(rel); err != nil {
			w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
			return
		}
		w.logger.Debug("watcher: deleted", slog.String("path", rel))
		w.emit("deleted", rel)

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports a rename on the old path only; the new path
		// shows up later as a Create if it lands in a watched dir. Drop
		// the old entry now and let the settle pass mop up the rest.
		if err := w.db.DeleteArticle(rel); err != nil {
			w.logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		} else {
			w.logger.Debug("watcher: rename old deleted", slog.String("path", rel))
			w.emit("deleted", rel)
		}
		w.scheduleReconcile()
	}
}

func (w *watcher) reindex(rel, kind string) {
	data, err := w.st.Read(rel)
	if err != nil {
		w.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := indexFile(w.db, rel, data); err != nil {
		w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
	w.emit(kind, rel)
}

// handleNewDir registers a directory created at runtime and indexes any
// markdown files that were written into it before the watch took effect.
func (w *watcher) handleNewDir(dir string) {
	if err := w.watchTree(dir); err != nil {
		w.logger.Warn("watcher: add new dir failed",
			slog.String("path", dir),
			slog.String("error", err.Error()))
	} else {
		w.logger.Debug("watcher: watching new dir", slog.String("path", dir))
	}

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return nil
		}
		data, readErr := w.st.Read(rel)
		if readErr != nil {
			return nil
		}
		if idxErr := indexFile(w.db, rel, data); idxErr == nil {
			w.logger.Debug("watcher: indexed from new dir", slog.String("path", rel))
			w.emit("created", rel)
		}
		return nil
	})
}

// reconcile compares index checksums against the content tree: entries
// whose files are gone get removed, and files that changed or appeared
// under a new path get (re)indexed.
func (w *watcher) reconcile() {
	checksums, err := w.db.AllChecksums()
	if err != nil {
		w.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	metas, err := w.st.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := w.db.DeleteArticle(p); err == nil {
			w.logger.Debug("reconcile: removed stale", slog.String("path", p))
			w.emit("deleted", p)
		}
	}

	for p, sum := range disk {
		if checksums[p] == sum {
			continue
		}
		data, err := w.st.Read(p)
		if err != nil {
			continue
		}
		if err := indexFile(w.db, p, data); err == nil {
			w.logger.Debug("reconcile: indexed new", slog.String("path", p))
			w.emit("created", p)
		}
	}
}

func (w *watcher) scheduleReconcile() {
	if w.settle == nil {
		w.settle = time.NewTimer(renameSettle)
		w.settleCh = w.settle.C
		return
	}
	w.settle.Reset(renameSettle)
}

func (w *watcher) emit(kind, path string) {
	if w.cb != nil {
		w.cb(kind, path)
	}
}

// watchTree adds root and every directory under it to the fsnotify watch set.
func (w *watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}
