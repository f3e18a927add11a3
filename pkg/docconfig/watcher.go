package docconfig

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/go-llmstxt/llmstxt/pkg/llmstxt"
)

// Watcher holds the current document configuration and reloads it when the
// file changes. A failed reload keeps the previous configuration.
type Watcher struct {
	store  *FileStore
	logger *slog.Logger

	mu      sync.RWMutex
	file    *File
	project llmstxt.ProjectDescription
	version string
}

// NewWatcher loads the file once and returns a Watcher serving it.
func NewWatcher(ctx context.Context, store *FileStore, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{store: store, logger: logger}
	if _, err := w.Reload(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Current returns a copy of the current project description. It is meant
// to be passed to llmstxt.WithProjectFunc.
func (w *Watcher) Current() llmstxt.ProjectDescription {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.project.Clone()
}

// File returns the most recently loaded file.
func (w *Watcher) File() *File {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.file
}

// Version returns the digest of the current configuration.
func (w *Watcher) Version() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Reload reads the file and swaps in its content. It reports whether the
// content changed.
func (w *Watcher) Reload(ctx context.Context) (bool, error) {
	f, version, err := w.store.Load(ctx)
	if err != nil {
		return false, err
	}

	w.mu.RLock()
	unchanged := version == w.version
	w.mu.RUnlock()
	if unchanged {
		return false, nil
	}

	project := f.Project()
	project.Sections = llmstxt.CleanSections(project.Sections, w.logger)

	w.mu.Lock()
	w.file = f
	w.project = project
	w.version = version
	w.mu.Unlock()

	w.logger.Info("loaded llms.txt config",
		"path", w.store.Path(),
		"version", shortVersion(version),
		"sections", len(project.Sections))
	return true, nil
}

// Run watches the file's directory and reloads on changes until ctx is
// cancelled. Watching the directory catches editors that replace the file
// by renaming a temp file over it.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	target := filepath.Clean(w.store.Path())
	if err := fw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	w.logger.Info("watching llms.txt config", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if _, err := w.Reload(ctx); err != nil {
				w.logger.Warn("failed to reload llms.txt config, keeping previous version",
					"path", target, "error", err)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func shortVersion(v string) string {
	if len(v) > 8 {
		return v[:8]
	}
	return v
}
