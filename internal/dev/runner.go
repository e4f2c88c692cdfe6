package dev

import (
	"context"
	"log/slog"
)

// Flusher is anything holding a cache that must be dropped when files
// change. Both the resolver cache and the template provider satisfy it.
type Flusher interface {
	Flush()
}

// Runner ties the file watcher to cache flushing and browser reload.
// On a template or config change it flushes the registered caches and
// tells connected browsers to reload.
type Runner struct {
	watcher  *Watcher
	reload   *ReloadServer
	flushers []Flusher
	logger   *slog.Logger
}

// NewRunner creates a Runner watching the given paths.
func NewRunner(paths, ignore []string, flushers ...Flusher) *Runner {
	r := &Runner{
		watcher: NewWatcher(WatcherConfig{
			Paths:  paths,
			Ignore: ignore,
		}),
		reload:   NewReloadServer(),
		flushers: flushers,
		logger:   slog.Default().With("component", "dev"),
	}
	r.watcher.OnChange(r.handleChange)
	return r
}

// ReloadServer returns the WebSocket reload server for mounting at
// ReloadPath.
func (r *Runner) ReloadServer() *ReloadServer {
	return r.reload
}

// Run starts the watcher and blocks until the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("watching for changes", "paths", r.watcher.config.Paths)
	defer r.reload.Close()
	return r.watcher.Start(ctx)
}

// Stop stops the watcher.
func (r *Runner) Stop() {
	r.watcher.Stop()
}

func (r *Runner) handleChange(c Change) {
	switch c.Type {
	case ChangeTemplate, ChangeConfig:
		r.logger.Info("change detected, flushing caches", "path", c.Path)
		for _, f := range r.flushers {
			f.Flush()
		}
		r.reload.NotifyReload()
	default:
		r.logger.Debug("asset change", "path", c.Path)
		r.reload.NotifyReload()
	}
}
