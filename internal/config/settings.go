package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pomodoro/zenpomo/internal/model"
)

// Settings is the user-editable settings file.
type Settings struct {
	Timer model.Configuration `yaml:"timer"`
}

func DefaultSettings() Settings {
	return Settings{Timer: model.DefaultConfiguration()}
}

// LoadSettings reads the settings file at path. A missing file yields the
// defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s := DefaultSettings()
		return &s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	return ParseSettings(data)
}

func ParseSettings(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("settings: parse: %w", err)
	}
	s.applyDefaults()
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings validates s and replaces the file at path.
func SaveSettings(path string, s Settings) error {
	if err := s.validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("settings: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("settings: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("settings: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("settings: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("settings: replace %s: %w", path, err)
	}
	return nil
}

func (s *Settings) applyDefaults() {
	defaults := model.DefaultConfiguration()
	if s.Timer.FocusDurationSeconds == 0 {
		s.Timer.FocusDurationSeconds = defaults.FocusDurationSeconds
	}
	if s.Timer.ShortBreakDurationSeconds == 0 {
		s.Timer.ShortBreakDurationSeconds = defaults.ShortBreakDurationSeconds
	}
	if s.Timer.LongBreakDurationSeconds == 0 {
		s.Timer.LongBreakDurationSeconds = defaults.LongBreakDurationSeconds
	}
	if s.Timer.FocusRepsPerBlock == 0 {
		s.Timer.FocusRepsPerBlock = defaults.FocusRepsPerBlock
	}
}

func (s *Settings) validate() error {
	if err := s.Timer.Validate(); err != nil {
		return fmt.Errorf("settings: validation failed: %w", err)
	}
	return nil
}
