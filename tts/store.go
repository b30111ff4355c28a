package tts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// SettingsFile is the name of the persisted playback settings file.
const SettingsFile = "settings.yml"

// Store persists Config to a YAML file.
type Store struct {
	path string
}

// NewStore returns a store backed by path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStorePath returns the settings file in the user config directory.
func DefaultStorePath(app string) (string, error) {
	scope := gap.NewScope(gap.User, app)
	path, err := scope.ConfigPath(SettingsFile)
	if err != nil {
		return "", fmt.Errorf("could not find config directory: %w", err)
	}
	return path, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the configuration. A missing file yields the defaults and no
// error. Any other failure yields the defaults and an error wrapping
// ErrConfigLoadFailed. Missing or malformed fields fall back to defaults.
func (s *Store) Load() (Config, error) {
	def := DefaultConfig()

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		log.Debug("No settings file found, using defaults", "path", s.path)
		return def, nil
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("yaml")
	v.SetDefault("voice", def.Voice)
	v.SetDefault("volume", def.Volume)
	v.SetDefault("rate", def.Rate)

	if err := v.ReadInConfig(); err != nil {
		return def, NewTTSError(ErrConfigLoadFailed, "store", "read").
			WithCause(err).
			WithContext("path", s.path)
	}

	cfg := def
	if name, err := cast.ToStringE(v.Get("voice")); err == nil && name != "" {
		cfg.Voice = name
	} else {
		log.Warn("Ignoring malformed voice setting", "path", s.path)
	}
	if vol, err := cast.ToFloat64E(v.Get("volume")); err == nil {
		cfg.Volume = vol
	} else {
		log.Warn("Ignoring malformed volume setting", "path", s.path, "err", err)
	}
	if rate, err := cast.ToFloat64E(v.Get("rate")); err == nil {
		cfg.Rate = rate
	} else {
		log.Warn("Ignoring malformed rate setting", "path", s.path, "err", err)
	}
	cfg.Normalize()

	log.Debug("Loaded settings", "path", s.path, "voice", cfg.Voice, "volume", cfg.Volume, "rate", cfg.Rate)
	return cfg, nil
}

// Save writes the configuration to a temporary file next to the target and
// renames it into place, creating the directory when needed.
func (s *Store) Save(cfg Config) error {
	cfg.Normalize()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return NewTTSError(ErrConfigSaveFailed, "store", "mkdir").WithCause(err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return NewTTSError(ErrConfigSaveFailed, "store", "encode").WithCause(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return NewTTSError(ErrConfigSaveFailed, "store", "create").WithCause(err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return NewTTSError(ErrConfigSaveFailed, "store", "write").WithCause(err)
	}
	if err := tmp.Close(); err != nil {
		return NewTTSError(ErrConfigSaveFailed, "store", "write").WithCause(err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return NewTTSError(ErrConfigSaveFailed, "store", "rename").WithCause(err)
	}

	log.Debug("Saved settings", "path", s.path)
	return nil
}
