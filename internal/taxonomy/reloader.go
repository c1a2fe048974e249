package taxonomy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the file must stay quiet before a reload.
// Editors often write a file in several steps.
const DefaultSettleDelay = 250 * time.Millisecond

// Reloader watches a taxonomy file and swaps it into a Resolver on change.
// A file that fails to parse is logged and the previous tree stays active.
type Reloader struct {
	path        string
	resolver    *Resolver
	logger      *slog.Logger
	settleDelay time.Duration

	mu    sync.Mutex
	timer *time.Timer

	// reloaded is signalled after every reload attempt; tests wait on it.
	reloaded chan error
}

// NewReloader creates a reloader for path.
func NewReloader(path string, resolver *Resolver, logger *slog.Logger) *Reloader {
	return &Reloader{
		path:        filepath.Clean(path),
		resolver:    resolver,
		logger:      logger,
		settleDelay: DefaultSettleDelay,
		reloaded:    make(chan error, 1),
	}
}

// Run watches until ctx is done. The parent directory is watched so that
// atomic rename-over saves are seen.
func (r *Reloader) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(r.path), err)
	}
	r.logger.Info("watching taxonomy file", "path", r.path)

	defer r.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != r.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				r.schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("taxonomy watcher error", "error", err)
		}
	}
}

// Reload reads the file now and swaps it in.
func (r *Reloader) Reload() error {
	tree, err := LoadFile(r.path)
	if err != nil {
		return err
	}
	return r.resolver.Swap(tree)
}

func (r *Reloader) schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.settleDelay, func() {
		err := r.Reload()
		if err != nil {
			r.logger.Error("taxonomy reload failed, keeping previous tree", "path", r.path, "error", err)
		}
		select {
		case r.reloaded <- err:
		default:
		}
	})
}

func (r *Reloader) stopTimer() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}
