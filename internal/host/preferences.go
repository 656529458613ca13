package host

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Preference keys in the editor's user settings file.
const (
	PrefColorScheme = "color_scheme"
	PrefTheme       = "theme"
)

// PreferencesFile applies themes by editing the editor's JSON preferences
// file, which the editor reloads on change. Unrelated keys are preserved.
type PreferencesFile struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewPreferencesFile creates a host backed by the preferences file at path.
func NewPreferencesFile(path string, logger *zap.Logger) *PreferencesFile {
	return &PreferencesFile{
		path:   path,
		logger: logger.Named("preferences"),
	}
}

// Path returns the preferences file path.
func (p *PreferencesFile) Path() string {
	return p.path
}

// SetColorScheme implements host.Host.
func (p *PreferencesFile) SetColorScheme(name string) error {
	return p.set(PrefColorScheme, name)
}

// SetWindowTheme implements host.Host.
func (p *PreferencesFile) SetWindowTheme(name string) error {
	return p.set(PrefTheme, name)
}

// Get returns the current value of key, or "" if unset.
func (p *PreferencesFile) Get(key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, _, err := p.read()
	if err != nil {
		return "", err
	}
	value, _ := prefs[key].(string)
	return value, nil
}

func (p *PreferencesFile) set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	prefs, mode, err := p.read()
	if err != nil {
		return err
	}

	if current, ok := prefs[key].(string); ok && current == value {
		p.logger.Debug("Preference already set", zap.String("key", key), zap.String("value", value))
		return nil
	}

	prefs[key] = value
	if err := p.write(prefs, mode); err != nil {
		return err
	}

	p.logger.Info("Updated editor preference",
		zap.String("key", key),
		zap.String("value", value))
	return nil
}

func (p *PreferencesFile) read() (map[string]interface{}, fs.FileMode, error) {
	prefs := make(map[string]interface{})

	info, err := os.Stat(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, 0644, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to stat preferences: %w", err)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read preferences: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &prefs); err != nil {
			return nil, 0, fmt.Errorf("failed to parse preferences %s: %w", p.path, err)
		}
	}
	if prefs == nil {
		prefs = make(map[string]interface{})
	}
	return prefs, info.Mode().Perm(), nil
}

// write replaces the file atomically so the editor never sees a partial file.
func (p *PreferencesFile) write(prefs map[string]interface{}, mode fs.FileMode) error {
	data, err := json.MarshalIndent(prefs, "", "\t")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".preferences-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set preferences mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close preferences: %w", err)
	}

	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
