package core

import (
	"path/filepath"
	"strings"
	"time"
)

// Track represents one playable audio file in the catalog.
type Track struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	Duration time.Duration `json:"duration,omitempty"`
	Size     int64         `json:"size"`

	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
}

// HasDuration returns true if the track length is known.
func (t Track) HasDuration() bool {
	return t.Duration > 0
}

// DisplayTitle returns the tag title, falling back to the file name
// without its extension.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return strings.TrimSuffix(t.Name, filepath.Ext(t.Name))
}
