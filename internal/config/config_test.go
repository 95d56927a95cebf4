package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	for _, k := range []string{
		"EMPITRIO_LIBRARY_DIR", "EMPITRIO_LIBRARY_EXTENSIONS", "EMPITRIO_PLAYBACK_VOLUME",
		"EMPITRIO_PLAYBACK_AUTO_ADVANCE", "EMPITRIO_TUI_THEME", "EMPITRIO_TUI_REFRESH_INTERVAL",
		"EMPITRIO_LOG_LEVEL", "EMPITRIO_LOG_FILE",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Playback.Volume != 80 {
		t.Errorf("Volume = %d, want 80", cfg.Playback.Volume)
	}
	if cfg.TUI.RefreshInterval != 250 {
		t.Errorf("RefreshInterval = %d, want 250", cfg.TUI.RefreshInterval)
	}
	if !cfg.Library.TagsEnabled() {
		t.Error("TagsEnabled() = false, want true")
	}
	if !cfg.Playback.AutoAdvanceEnabled() {
		t.Error("AutoAdvanceEnabled() = false, want true")
	}
	if len(cfg.Library.Extensions) != len(DefaultExtensions) {
		t.Errorf("Extensions = %v, want %v", cfg.Library.Extensions, DefaultExtensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	home := isolate(t)

	path := filepath.Join(home, ".empitriorc")
	data := `
[library]
dir = "/music"
extensions = [".mp3"]
read_tags = false

[playback]
volume = 40
auto_advance = false

[tui]
theme = "mocha"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Library.Dir != "/music" {
		t.Errorf("Dir = %q, want /music", cfg.Library.Dir)
	}
	if cfg.Library.TagsEnabled() {
		t.Error("TagsEnabled() = true, want false")
	}
	if cfg.Playback.Volume != 40 {
		t.Errorf("Volume = %d, want 40", cfg.Playback.Volume)
	}
	if cfg.Playback.AutoAdvanceEnabled() {
		t.Error("AutoAdvanceEnabled() = true, want false")
	}
	if cfg.Playback.VolumeStep != 5 {
		t.Errorf("VolumeStep = %d, want default 5", cfg.Playback.VolumeStep)
	}
	if cfg.TUI.Theme != "mocha" {
		t.Errorf("Theme = %q, want mocha", cfg.TUI.Theme)
	}
}

func TestLoadFromXDG(t *testing.T) {
	home := isolate(t)
	xdg := filepath.Join(home, "xdg")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "empitrio")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[tui]\ntheme = \"latte\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TUI.Theme != "latte" {
		t.Errorf("Theme = %q, want latte", cfg.TUI.Theme)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("EMPITRIO_LIBRARY_DIR", "/srv/audio")
	t.Setenv("EMPITRIO_LIBRARY_EXTENSIONS", ".flac, .wav")
	t.Setenv("EMPITRIO_PLAYBACK_VOLUME", "25")
	t.Setenv("EMPITRIO_PLAYBACK_AUTO_ADVANCE", "false")
	t.Setenv("EMPITRIO_TUI_REFRESH_INTERVAL", "100")
	t.Setenv("EMPITRIO_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Library.Dir != "/srv/audio" {
		t.Errorf("Dir = %q", cfg.Library.Dir)
	}
	if strings.Join(cfg.Library.Extensions, " ") != ".flac .wav" {
		t.Errorf("Extensions = %v", cfg.Library.Extensions)
	}
	if cfg.Playback.Volume != 25 {
		t.Errorf("Volume = %d, want 25", cfg.Playback.Volume)
	}
	if cfg.Playback.AutoAdvanceEnabled() {
		t.Error("AutoAdvanceEnabled() = true, want false")
	}
	if cfg.TUI.RefreshInterval != 100 {
		t.Errorf("RefreshInterval = %d, want 100", cfg.TUI.RefreshInterval)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	isolate(t)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, apperrors.ErrConfigNotFound) {
		t.Errorf("LoadFrom() error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFromMalformedFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[playback\nvolume = "), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFrom(path)
	if !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Errorf("LoadFrom() error = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"volume too high", func(c *Config) { c.Playback.Volume = 101 }, "volume must be"},
		{"step zero", func(c *Config) { c.Playback.VolumeStep = 0 }, "volume_step"},
		{"bad theme", func(c *Config) { c.TUI.Theme = "neon" }, "invalid theme"},
		{"negative refresh", func(c *Config) { c.TUI.RefreshInterval = -1 }, "refresh_interval"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
		{"bad extension", func(c *Config) { c.Library.Extensions = []string{"mp3"} }, "invalid extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestPlaybackFractions(t *testing.T) {
	c := PlaybackConfig{Volume: 50, VolumeStep: 10}
	if c.Level() != 0.5 {
		t.Errorf("Level() = %v, want 0.5", c.Level())
	}
	if c.Step() != 0.1 {
		t.Errorf("Step() = %v, want 0.1", c.Step())
	}
}
