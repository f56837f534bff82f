// Package watch monitors a single file for changes with debouncing.
//
// It watches the file's parent directory rather than the file itself so
// editors that replace the file (write temp + rename) are still seen.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config configures a file watcher.
type Config struct {
	// Path is the file to watch.
	Path string

	// Debounce is the time to wait after a change before firing OnChange.
	// Multiple rapid changes are coalesced into one event. Default: 500ms.
	Debounce time.Duration

	// OnChange is called after the debounce window with the watched path.
	OnChange func(path string)

	// OnError is called when the underlying watcher reports an error.
	OnError func(err error)

	// Logger for structured logging.
	Logger *slog.Logger
}

// Watcher monitors one file for modifications.
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu       sync.Mutex
	pending  time.Time
	watching bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// New creates a watcher for the file in cfg.Path.
func New(cfg Config) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("OnChange callback is required")
	}
	if cfg.Debounce == 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		config:  cfg,
		watcher: fsWatcher,
		logger:  cfg.Logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Start begins watching. Call Stop to halt.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.watching {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.watching = true
	w.mu.Unlock()

	dir := filepath.Dir(w.config.Path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Debug("watching directory", "path", dir, "file", w.config.Path)

	go w.loop(ctx)
	return nil
}

// Stop halts the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.watching {
		w.mu.Unlock()
		return nil
	}
	w.watching = false
	w.mu.Unlock()

	close(w.stopCh)
	err := w.watcher.Close()
	<-w.doneCh
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Debounce / 2)
	defer ticker.Stop()

	target := filepath.Clean(w.config.Path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()
			w.logger.Debug("change detected", "path", event.Name, "op", event.Op.String())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.config.OnError != nil {
				w.config.OnError(err)
			} else {
				w.logger.Warn("watch error", "error", err)
			}

		case <-ticker.C:
			w.mu.Lock()
			fire := !w.pending.IsZero() && time.Since(w.pending) >= w.config.Debounce
			if fire {
				w.pending = time.Time{}
			}
			w.mu.Unlock()
			if fire {
				w.config.OnChange(w.config.Path)
			}
		}
	}
}
