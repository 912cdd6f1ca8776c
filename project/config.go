package project

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// ConfigFile is the workspace configuration file name.
const ConfigFile = "renewdsl.yaml"

// Config is the contents of renewdsl.yaml.
type Config struct {
	Name      string    `yaml:"name"`
	Sources   []string  `yaml:"sources"`   // directories searched for documents, relative to the workspace
	Extension string    `yaml:"extension"` // document file extension, including the dot
	Log       LogConfig `yaml:"log"`
}

// LogConfig selects the slog level ("debug", "info", "warn", "error") and
// handler format ("text" or "json").
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig is used when no renewdsl.yaml exists, and fills any field a
// config file leaves out.
func DefaultConfig() Config {
	return Config{
		Sources:   []string{"."},
		Extension: ".renew",
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig reads dir/renewdsl.yaml. A missing file is not an error.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", ConfigFile, err)
	}

	defaults := DefaultConfig()
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaults.Sources
	}
	if cfg.Extension == "" {
		cfg.Extension = defaults.Extension
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
	return cfg, nil
}

// WriteConfig writes cfg to dir/renewdsl.yaml.
func WriteConfig(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0644)
}

// SourceDirs returns the configured source directories resolved against dir.
func (c Config) SourceDirs(dir string) []string {
	dirs := make([]string, 0, len(c.Sources))
	for _, src := range c.Sources {
		if filepath.IsAbs(src) {
			dirs = append(dirs, src)
			continue
		}
		dirs = append(dirs, filepath.Join(dir, src))
	}
	return dirs
}

// Logger builds a logger from the log section. It does not touch the global
// slog default.
func (c Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch c.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(handler)
}
