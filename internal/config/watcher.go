package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yildizm/movierec/internal/logger"
)

// DefaultReloadDelay coalesces bursts of writes from editors
const DefaultReloadDelay = 150 * time.Millisecond

// Watcher reloads a config file whenever it changes on disk.
// The parent directory is watched so that editors which replace the
// file by rename are still noticed.
type Watcher struct {
	path      string
	loader    *Loader
	fsw       *fsnotify.Watcher
	log       *logger.Logger
	delay     time.Duration
	closeOnce sync.Once
}

// NewWatcher starts watching path; call Run to receive reloads
func NewWatcher(loader *Loader, path string, log *logger.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("cannot watch config file: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Watcher{
		path:   absPath,
		loader: loader,
		fsw:    fsw,
		log:    log,
		delay:  DefaultReloadDelay,
	}, nil
}

// Path returns the watched file
func (w *Watcher) Path() string {
	return w.path
}

// Run blocks until ctx is done, calling onChange with every config that
// loads and validates. Invalid edits are logged and the previous config
// stays in effect.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config)) error {
	defer w.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.delay)
			} else {
				timer.Reset(w.delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload(onChange)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.WarnWithFields("config watcher error", []logger.Field{logger.Error(err)})
		}
	}
}

// Close stops watching; safe to call more than once
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) reload(onChange func(*Config)) {
	cfg, err := w.loader.LoadConfig(w.path)
	if err != nil {
		w.log.WarnWithFields("config reload rejected", []logger.Field{
			logger.F("path", w.path),
			logger.Error(err),
		})
		return
	}

	w.log.InfoWithFields("config reloaded", []logger.Field{logger.F("path", w.path)})
	if onChange != nil {
		onChange(cfg)
	}
}
