package ksym

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultDebounce coalesces bursts of writes to one rerun.
const defaultDebounce = 100 * time.Millisecond

// Watcher re-answers query files as they change on disk.
type Watcher struct {
	engine    QueryEngine
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	onResults func(path string, results []Result)

	debounce time.Duration
}

// NewWatcher builds a watcher that feeds changed query files through
// engine and hands each file's results to onResults.
func NewWatcher(engine QueryEngine, logger *zap.Logger, onResults func(path string, results []Result)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("ksym: starting watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		engine:    engine,
		logger:    logger,
		watcher:   fsw,
		onResults: onResults,
		debounce:  defaultDebounce,
	}, nil
}

// Add registers paths to watch. Directories are walked and every
// subdirectory is registered, so files added later are seen too.
func (w *Watcher) Add(paths ...string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("ksym: error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("ksym: watching %s: %w", path, err)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return w.watcher.Add(p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("ksym: watching %s: %w", path, err)
		}
	}
	return nil
}

// Run processes change events until the context ends or the watcher
// is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))
		}
	}
}

// Close stops delivering events.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !hasDesiredExtension(event.Name) {
		return
	}

	// wait for a while after file change to consider multiple changes as one
	time.Sleep(w.debounce)

	results, err := w.engine.RunFile(event.Name)
	if err != nil {
		w.logger.Error("Error processing file", zap.String("file", event.Name), zap.Error(err))
		return
	}
	w.logger.Info("query file reprocessed",
		zap.String("file", event.Name),
		zap.Int("results", len(results)),
	)
	w.onResults(event.Name, results)
}
