package scan

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the corpus root for law file changes and triggers a
// rescan. Scans are idempotent per law, so the watcher re-runs the whole
// scan after each debounced change burst.
type Watcher struct {
	scanner      *Scanner
	rootDir      string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	logger       *slog.Logger
	stopCh       chan struct{}
	doneCh       chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a file watcher over the corpus root.
func NewWatcher(scanner *Scanner, rootDir string, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	w := &Watcher{
		scanner:      scanner,
		rootDir:      rootDir,
		watcher:      fw,
		debounceTime: 500 * time.Millisecond,
		logger:       logger,
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching for file changes.
func (w *Watcher) Start(ctx context.Context) {
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	rescanCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			rel, _ := filepath.Rel(w.rootDir, event.Name)
			changed[rel] = true

			// New directories join the watch set immediately.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
					}
				}
			}

			// Reset debounce timer - properly stop and drain.
			if debounceTimer != nil {
				if !debounceTimer.Stop() {
					select {
					case <-debounceTimer.C:
					default:
					}
				}
			}
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case rescanCh <- struct{}{}:
				default:
				}
			})

		case <-rescanCh:
			w.triggerRescan(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) triggerRescan(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}
	w.logger.Info("rescanning corpus", "changed_files", len(changed))

	stats, err := w.scanner.Scan(ctx, w.rootDir)
	if err != nil {
		w.logger.Error("rescan failed", "error", err)
		return
	}
	w.logger.Info("rescan complete", "laws", stats.LawsScanned, "references", stats.References)
}

// shouldProcessEvent keeps only writes, creates and removes of law XML
// files, plus directory creation (handled in the event loop).
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
		return false
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		return event.Op&fsnotify.Create != 0
	}
	return strings.HasSuffix(event.Name, ".xml")
}

func (w *Watcher) addDirectoriesRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("error accessing path", "path", path, "error", err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "dir", path, "error", err)
		}
		return nil
	})
}
