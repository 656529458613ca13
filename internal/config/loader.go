package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Loader reads the settings file and remembers the last good result.
type Loader struct {
	path   string
	logger *zap.Logger

	mu       sync.Mutex
	last     *Settings
	reported map[string]bool
}

// NewLoader creates a loader for the settings file at path.
func NewLoader(path string, logger *zap.Logger) *Loader {
	return &Loader{
		path:     path,
		logger:   logger.Named("config"),
		reported: make(map[string]bool),
	}
}

// Path returns the settings file path.
func (l *Loader) Path() string {
	return l.path
}

// Load reads and parses the settings file. The returned Settings are usable
// even when err is non-nil: a read or parse failure yields the last good
// settings (or defaults), and malformed keys fall back to their defaults.
func (l *Loader) Load() (*Settings, error) {
	values, err := l.readFile()
	if err != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.last != nil {
			return l.last, err
		}
		return DefaultSettings(), err
	}

	settings, errs := FromMap(values)

	l.mu.Lock()
	defer l.mu.Unlock()

	// An unresolvable zone keeps the last valid one rather than jumping to UTC.
	if l.last != nil {
		for _, e := range multierr.Errors(errs) {
			if cfgErr, ok := e.(*ConfigurationError); ok && cfgErr.Key == KeyTimezone {
				settings.Timezone = l.last.Timezone
				settings.Zone = l.last.Zone
			}
		}
	}

	l.last = settings
	return settings, errs
}

// Current is the per-tick read. Problems are logged once per distinct
// message and never returned; the result is never nil.
func (l *Loader) Current() *Settings {
	settings, err := l.Load()
	l.report(err)
	return settings
}

func (l *Loader) report(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err == nil {
		// A clean read re-arms reporting for problems that come back later.
		l.reported = make(map[string]bool)
		return
	}

	for _, e := range multierr.Errors(err) {
		msg := e.Error()
		if l.reported[msg] {
			continue
		}
		l.reported[msg] = true
		l.logger.Warn("Settings problem, using fallback value",
			zap.String("path", l.path),
			zap.Error(e))
	}
}

func (l *Loader) readFile() (map[string]interface{}, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("failed to read settings: %w", err)}
	}

	values, err := Decode(l.path, data)
	if err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("failed to parse settings %s: %w", l.path, err)}
	}
	return values, nil
}

// Decode parses a settings document, choosing the format from the file
// extension: YAML (.yaml, .yml), TOML (.toml) or JSON (anything else,
// including .sublime-settings).
func Decode(path string, data []byte) (map[string]interface{}, error) {
	values := make(map[string]interface{})

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	case ".toml":
		if err := toml.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &values); err != nil {
			return nil, err
		}
	}

	if values == nil {
		values = make(map[string]interface{})
	}
	return values, nil
}

// Watch calls onChange whenever the settings file is written, created or
// replaced, until ctx is done. Bursts of events within 200ms are coalesced.
// The parent directory is watched so editors that save via rename are seen.
func (l *Loader) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(l.path)
	l.logger.Info("Watching settings file", zap.String("path", target))

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				l.logger.Info("Stopping settings watcher")
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				l.logger.Debug("Settings file changed", zap.String("op", event.Op.String()))
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, onChange)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Warn("Settings watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
