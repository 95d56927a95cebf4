// Package catalog builds the ordered list of playable tracks in a directory.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/tomgineer/empitrio/internal/core"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

// Catalog is an immutable, ordered sequence of tracks. Track IDs equal
// their index and stay valid for the lifetime of the Catalog.
type Catalog struct {
	dir    string
	tracks []core.Track
}

// Options controls a directory scan.
type Options struct {
	// Extensions lists accepted file extensions, compared case-insensitively.
	Extensions []string
	// ReadTags fills Title, Artist and Album from embedded metadata.
	ReadTags bool
}

// New builds a Catalog from tracks, assigning IDs by position.
func New(dir string, tracks []core.Track) *Catalog {
	out := make([]core.Track, len(tracks))
	copy(out, tracks)
	for i := range out {
		out[i].ID = i
	}
	return &Catalog{dir: dir, tracks: out}
}

// Load scans dir non-recursively and returns the playable tracks sorted by name.
// An empty result is a valid empty Catalog.
func Load(dir string, opts Options) (*Catalog, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrUnreadable, dir, err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrUnreadable, abs, err)
	}

	accept := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		accept[strings.ToLower(ext)] = true
	}

	var tracks []core.Track
	for _, entry := range entries {
		if entry.IsDir() || !accept[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		path := filepath.Join(abs, entry.Name())
		// Follow symlinks; skip anything that is not a regular file.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		track := core.Track{
			Name: entry.Name(),
			Path: path,
			Size: info.Size(),
		}
		if opts.ReadTags {
			readTags(&track)
		}
		tracks = append(tracks, track)
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		a, b := strings.ToLower(tracks[i].Name), strings.ToLower(tracks[j].Name)
		if a == b {
			return tracks[i].Name < tracks[j].Name
		}
		return a < b
	})

	return New(abs, tracks), nil
}

// Dir returns the scanned directory.
func (c *Catalog) Dir() string {
	return c.dir
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tracks)
}

// IsEmpty returns true if the catalog has no tracks.
func (c *Catalog) IsEmpty() bool {
	return c.Len() == 0
}

// Track returns the track with the given ID.
func (c *Catalog) Track(id int) (core.Track, bool) {
	if c == nil || id < 0 || id >= len(c.tracks) {
		return core.Track{}, false
	}
	return c.tracks[id], true
}

// Tracks returns a copy of all tracks in order.
func (c *Catalog) Tracks() []core.Track {
	if c == nil {
		return nil
	}
	out := make([]core.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Fingerprint hashes names, sizes and metadata so two scans of an
// unchanged directory compare equal.
func (c *Catalog) Fingerprint() (uint64, error) {
	if c == nil {
		return 0, nil
	}
	return hashstructure.Hash(c.tracks, hashstructure.FormatV2, nil)
}

// Folders returns the names of the visible subdirectories of dir, sorted
// the same way as tracks. Symlinks to directories are included.
func Folders(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrUnreadable, dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, name)
	}

	sort.SliceStable(names, func(i, j int) bool {
		a, b := strings.ToLower(names[i]), strings.ToLower(names[j])
		if a == b {
			return names[i] < names[j]
		}
		return a < b
	})
	return names, nil
}
