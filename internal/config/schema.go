package config

// Config is the root configuration structure.
type Config struct {
	Library  LibraryConfig  `toml:"library" json:"library"`
	Playback PlaybackConfig `toml:"playback" json:"playback"`
	TUI      TUIConfig      `toml:"tui" json:"tui"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// LibraryConfig controls which files make up the catalog.
type LibraryConfig struct {
	Dir        string   `toml:"dir" json:"dir"`
	Extensions []string `toml:"extensions" json:"extensions"`
	ReadTags   *bool    `toml:"read_tags" json:"read_tags"`
}

// PlaybackConfig holds default playback settings.
type PlaybackConfig struct {
	Volume      int   `toml:"volume" json:"volume"`
	VolumeStep  int   `toml:"volume_step" json:"volume_step"`
	AutoAdvance *bool `toml:"auto_advance" json:"auto_advance"`
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme" json:"theme"`
	RefreshInterval int    `toml:"refresh_interval" json:"refresh_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// TagsEnabled reports whether tag metadata should be read during scans.
func (c *LibraryConfig) TagsEnabled() bool {
	return c.ReadTags == nil || *c.ReadTags
}

// AutoAdvanceEnabled reports whether finished tracks advance to the next one.
func (c *PlaybackConfig) AutoAdvanceEnabled() bool {
	return c.AutoAdvance == nil || *c.AutoAdvance
}

// Level returns the volume as a fraction in [0, 1].
func (c *PlaybackConfig) Level() float64 {
	return float64(c.Volume) / 100
}

// Step returns the volume step as a fraction in [0, 1].
func (c *PlaybackConfig) Step() float64 {
	return float64(c.VolumeStep) / 100
}
