package config

// DefaultExtensions are the file types the audio engine can decode.
var DefaultExtensions = []string{".mp3", ".flac", ".wav", ".ogg"}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	readTags := true
	autoAdvance := true
	return &Config{
		Library: LibraryConfig{
			Extensions: append([]string(nil), DefaultExtensions...),
			ReadTags:   &readTags,
		},
		Playback: PlaybackConfig{
			Volume:      80,
			VolumeStep:  5,
			AutoAdvance: &autoAdvance,
		},
		TUI: TUIConfig{
			Theme:           "xcad",
			RefreshInterval: 250,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Library
	if len(c.Library.Extensions) == 0 {
		c.Library.Extensions = d.Library.Extensions
	}
	if c.Library.ReadTags == nil {
		c.Library.ReadTags = d.Library.ReadTags
	}

	// Playback
	if c.Playback.Volume == 0 {
		c.Playback.Volume = d.Playback.Volume
	}
	if c.Playback.VolumeStep == 0 {
		c.Playback.VolumeStep = d.Playback.VolumeStep
	}
	if c.Playback.AutoAdvance == nil {
		c.Playback.AutoAdvance = d.Playback.AutoAdvance
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}
