// Package watch ingests and indexes contracts as they land in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexrag/internal/core/domain"
	"github.com/custodia-labs/lexrag/internal/core/ports/driving"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// DefaultDebounce is how long the directory must be quiet before a batch runs.
const DefaultDebounce = 2 * time.Second

// ErrNoIngestService is returned when no ingest service is provided.
var ErrNoIngestService = errors.New("watch: ingest service is required")

// FileResult reports the outcome of one ingested file.
type FileResult struct {
	Path    string
	Skipped bool
	Err     error
}

// Config configures a Watcher.
type Config struct {
	// Debounce is the quiet period before pending files are processed.
	Debounce time.Duration

	// OnFile is called after each file is ingested.
	OnFile func(FileResult)

	// OnIndex is called after each index build.
	OnIndex func(*domain.IndexReport, error)
}

// Watcher turns file system events into ingest and index runs.
type Watcher struct {
	ingest driving.IngestService
	index  driving.IndexService
	cfg    Config
}

// New creates a watcher. index may be nil to only ingest.
func New(ingest driving.IngestService, index driving.IndexService, cfg Config) (*Watcher, error) {
	if ingest == nil {
		return nil, ErrNoIngestService
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &Watcher{ingest: ingest, index: index, cfg: cfg}, nil
}

// Run watches dir (non-recursively) until ctx is cancelled. Files that
// appear or change are ingested once the directory has been quiet for
// the debounce period, then the index is built incrementally.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("%w: watch %s: %v", domain.ErrInvalidInput, dir, err)
	}
	logger.Info("Watching %s", dir)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.cfg.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			pending[event.Name] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			if err := w.process(ctx, paths); err != nil {
				return err
			}
		}
	}
}

// relevant reports whether an event names a new or changed candidate file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if !w.ingest.Accepts(event.Name) {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return true
}

// process ingests paths in name order and indexes when anything was parsed.
// Storage failures stop the watcher; per-file failures are reported.
func (w *Watcher) process(ctx context.Context, paths []string) error {
	sort.Strings(paths)
	parsed := 0
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		skipped, err := w.ingest.IngestFile(ctx, path)
		if w.cfg.OnFile != nil {
			w.cfg.OnFile(FileResult{Path: path, Skipped: skipped, Err: err})
		}
		switch {
		case errors.Is(err, domain.ErrStorage):
			return err
		case err != nil:
			logger.Warn("Failed to ingest %s: %v", path, err)
		case !skipped:
			parsed++
		}
	}

	if parsed == 0 || w.index == nil {
		return nil
	}
	report, err := w.index.Build(ctx, domain.IndexIncremental, nil)
	if w.cfg.OnIndex != nil {
		w.cfg.OnIndex(report, err)
	}
	if errors.Is(err, domain.ErrStorage) || errors.Is(err, domain.ErrDimensionMismatch) {
		return err
	}
	if err != nil {
		logger.Warn("Index build failed: %v", err)
	}
	return nil
}
