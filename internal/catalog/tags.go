package catalog

import (
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tomgineer/empitrio/internal/core"
)

// readTags fills metadata from the file's embedded tags. Unreadable or
// untagged files keep empty metadata.
func readTags(t *core.Track) {
	f, err := os.Open(t.Path)
	if err != nil {
		return
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return
	}

	t.Title = strings.TrimSpace(m.Title())
	t.Artist = strings.TrimSpace(m.Artist())
	if t.Artist == "" {
		t.Artist = strings.TrimSpace(m.AlbumArtist())
	}
	t.Album = strings.TrimSpace(m.Album())
}
