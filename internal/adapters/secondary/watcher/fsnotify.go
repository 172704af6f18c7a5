package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
)

// RecursiveWatcher implements change sourcing with fsnotify, watching a
// set of root directories recursively plus individual extra files that lie
// outside every root (e.g. forced-restart files).
type RecursiveWatcher struct {
	roots      []string
	extraFiles []string
	logger     *slog.Logger

	mu         sync.Mutex
	subscribed bool
}

// NewRecursiveWatcher creates a watcher for the given roots and extra files
func NewRecursiveWatcher(roots, extraFiles []string, logger *slog.Logger) *RecursiveWatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecursiveWatcher{
		roots:      roots,
		extraFiles: extraFiles,
		logger:     logger.With("service", "watcher"),
	}
}

// Subscribe starts watching and returns the raw event stream. The channel
// is closed when the context is cancelled.
func (w *RecursiveWatcher) Subscribe(ctx context.Context) (<-chan entities.ChangeEvent, error) {
	w.mu.Lock()
	if w.subscribed {
		w.mu.Unlock()
		return nil, errors.New("already subscribed")
	}
	w.subscribed = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	watched := 0
	for _, root := range w.roots {
		n, err := w.addTree(fsw, root)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", root, err)
		}
		watched += n
	}

	for _, f := range w.extraFiles {
		dir := filepath.Dir(f)
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory of extra file",
				slog.String("file", f),
				slog.String("error", err.Error()),
			)
		}
	}

	if watched == 0 && len(w.extraFiles) == 0 {
		_ = fsw.Close()
		return nil, errors.New("no directories to watch")
	}

	w.logger.Info("watching for changes", slog.Int("directories", watched))

	events := make(chan entities.ChangeEvent, 64)

	go w.pump(ctx, fsw, events)

	return events, nil
}

// addTree watches root and all directories below it
func (w *RecursiveWatcher) addTree(fsw *fsnotify.Watcher, root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		w.logger.Warn("watch root missing, skipping", slog.String("root", root))
		return 0, nil
	}

	if !info.IsDir() {
		if err := fsw.Add(filepath.Dir(root)); err != nil {
			return 0, err
		}
		return 1, nil
	}

	count := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep going
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != root && (name == ".git" || name == "node_modules") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			w.logger.Warn("cannot watch directory",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		count++
		return nil
	})
	return count, err
}

// pump translates fsnotify events into domain change events until the
// context is cancelled
func (w *RecursiveWatcher) pump(ctx context.Context, fsw *fsnotify.Watcher, out chan<- entities.ChangeEvent) {
	defer close(out)
	defer func() { _ = fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}

			kind, relevant := mapOp(ev.Op)
			if !relevant {
				continue
			}

			// New directories must be added to keep the watch recursive.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := fsw.Add(ev.Name); err != nil {
						w.logger.Warn("cannot watch new directory",
							slog.String("path", ev.Name),
							slog.String("error", err.Error()),
						)
					}
					continue
				}
			}

			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				abs = ev.Name
			}

			change := entities.ChangeEvent{
				Path:      abs,
				Kind:      kind,
				Timestamp: time.Now(),
			}

			select {
			case out <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}

// mapOp converts an fsnotify operation to a change kind. Chmod-only events
// carry no content change and are dropped.
func mapOp(op fsnotify.Op) (entities.ChangeKind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return entities.Created, true
	case op.Has(fsnotify.Write):
		return entities.Modified, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return entities.Deleted, true
	default:
		return entities.Modified, false
	}
}
