// Package watch reports edits to a single file such as the settings file.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultDebounce = 200 * time.Millisecond

// Watcher calls onChange after the target file is written, created or
// replaced. Bursts of events within the debounce window collapse into one
// call. The parent directory is watched so editors that save by rename are
// still seen.
type Watcher struct {
	targetPath string
	parentPath string
	onChange   func()
	debounce   time.Duration
	logger     zerolog.Logger
}

func New(targetPath string, onChange func(), logger zerolog.Logger) *Watcher {
	target := filepath.Clean(targetPath)
	return &Watcher{
		targetPath: target,
		parentPath: filepath.Dir(target),
		onChange:   onChange,
		debounce:   DefaultDebounce,
		logger:     logger,
	}
}

// WithDebounce overrides the debounce window.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// Run watches until ctx is cancelled. A missing parent directory is created.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.parentPath, 0o755); err != nil {
		return fmt.Errorf("create watch dir: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.parentPath); err != nil {
		return fmt.Errorf("watch %s: %w", w.parentPath, err)
	}
	w.logger.Debug().Str("path", w.targetPath).Msg("watching file")

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.targetPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Trace().Str("op", event.Op.String()).Msg("watched file event")
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounce, w.fire)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) fire() {
	w.logger.Info().Str("path", w.targetPath).Msg("watched file changed")
	if w.onChange != nil {
		w.onChange()
	}
}
