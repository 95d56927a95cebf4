package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.empitriorc, $XDG_CONFIG_HOME/empitrio/config.toml, ~/.config/empitrio/config.toml
func Load() (*Config, error) {
	cfg := &Config{}

	// Try loading from file
	path := FindFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidConfig, path, err)
		}
	}

	// Apply defaults, then environment variable overrides
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, path)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultPath returns the path a new config file is written to.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".empitriorc"
	}
	return filepath.Join(home, ".empitriorc")
}

// FindFile returns the first existing config file path.
func FindFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".empitriorc"),
	}

	// XDG_CONFIG_HOME or default
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "empitrio", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	// Library
	if v := os.Getenv("EMPITRIO_LIBRARY_DIR"); v != "" {
		cfg.Library.Dir = v
	}
	if v := os.Getenv("EMPITRIO_LIBRARY_EXTENSIONS"); v != "" {
		var exts []string
		for _, e := range strings.Split(v, ",") {
			if e = strings.TrimSpace(e); e != "" {
				exts = append(exts, e)
			}
		}
		if len(exts) > 0 {
			cfg.Library.Extensions = exts
		}
	}

	// Playback
	if v := os.Getenv("EMPITRIO_PLAYBACK_VOLUME"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Playback.Volume = i
		}
	}
	if v := os.Getenv("EMPITRIO_PLAYBACK_AUTO_ADVANCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Playback.AutoAdvance = &b
		}
	}

	// TUI
	if v := os.Getenv("EMPITRIO_TUI_THEME"); v != "" {
		cfg.TUI.Theme = v
	}
	if v := os.Getenv("EMPITRIO_TUI_REFRESH_INTERVAL"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshInterval = i
		}
	}

	// Log
	if v := os.Getenv("EMPITRIO_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("EMPITRIO_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
