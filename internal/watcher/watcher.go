// Package watcher reloads the runtime configuration when the config file
// changes on disk.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sydlexius/zonecast/internal/config"
	"github.com/sydlexius/zonecast/internal/event"
)

// Service watches the config file for writes and applies changed settings,
// publishing a reload event on success.
type Service struct {
	path     string
	applyFn  func(*config.Config) error
	eventBus *event.Bus
	logger   *slog.Logger
	debounce time.Duration
}

// NewService creates a config file watcher. applyFn receives the freshly
// loaded config and pushes the changed settings into the running components.
func NewService(path string, applyFn func(*config.Config) error, eventBus *event.Bus, logger *slog.Logger) *Service {
	return &Service{
		path:     path,
		applyFn:  applyFn,
		eventBus: eventBus,
		logger:   logger.With("component", "config-watcher"),
		debounce: 500 * time.Millisecond,
	}
}

// SetDebounce overrides the default debounce interval (for testing).
func (s *Service) SetDebounce(d time.Duration) {
	s.debounce = d
}

// Start blocks until ctx is canceled. It watches the config file's directory
// and coalesces rapid writes into a single reload. Editors that replace the
// file on save (rename + create) are handled by watching the parent dir.
func (s *Service) Start(ctx context.Context) {
	if s.path == "" {
		s.logger.Info("no config file, watcher disabled")
		return
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Warn("fsnotify unavailable, config reload disabled", "error", err)
		return
	}
	defer w.Close() //nolint:errcheck

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		s.logger.Error("failed to watch config directory", "dir", dir, "error", err)
		return
	}
	s.logger.Info("watching config file", "path", s.path)

	// Debounce timer for coalescing rapid writes into a single reload.
	// Starts stopped; reset on each relevant event.
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	reloadPending := false

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("config watcher stopping")
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !s.relevant(ev) {
				continue
			}
			if !debounceTimer.Stop() {
				select {
				case <-debounceTimer.C:
				default:
				}
			}
			debounceTimer.Reset(s.debounce)
			reloadPending = true

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Error("fsnotify error", "error", err)

		case <-debounceTimer.C:
			if reloadPending {
				reloadPending = false
				s.reload()
			}
		}
	}
}

func (s *Service) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return filepath.Clean(ev.Name) == filepath.Clean(s.path)
}

func (s *Service) reload() {
	cfg, err := config.Load(s.path)
	if err != nil {
		s.logger.Error("config reload failed, keeping current settings", "error", err)
		return
	}
	if err := s.applyFn(cfg); err != nil {
		s.logger.Error("applying reloaded config failed", "error", err)
		return
	}

	s.logger.Info("configuration reloaded", "path", s.path)
	if s.eventBus != nil {
		s.eventBus.Publish(event.Event{
			Type: event.ConfigReloaded,
			Data: map[string]any{"path": s.path},
		})
	}
}
