package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomgineer/empitrio/internal/core"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

var testExtensions = []string{".mp3", ".flac", ".wav", ".ogg"}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("not really audio"), 0644))
	}
}

func TestLoadFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.mp3", "A.FLAC", "notes.txt", "c.Ogg", "cover.jpg", "a.wav")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp3"), 0755))

	cat, err := Load(dir, Options{Extensions: testExtensions})
	require.NoError(t, err)

	names := make([]string, 0, cat.Len())
	for _, tr := range cat.Tracks() {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"A.FLAC", "a.wav", "b.mp3", "c.Ogg"}, names)

	for i, tr := range cat.Tracks() {
		assert.Equal(t, i, tr.ID, "ID must equal index")
		assert.True(t, filepath.IsAbs(tr.Path))
		assert.Equal(t, int64(len("not really audio")), tr.Size)
	}
}

func TestLoadEmptyDirectory(t *testing.T) {
	cat, err := Load(t.TempDir(), Options{Extensions: testExtensions})
	require.NoError(t, err)
	assert.True(t, cat.IsEmpty())
	assert.Equal(t, 0, cat.Len())
}

func TestLoadUnreadable(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"), Options{Extensions: testExtensions})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUnreadable))
}

func TestFolders(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"studio", "Live", ".cache", "b-sides"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
	}
	writeFiles(t, dir, "a.mp3", "notes.txt")

	names, err := Folders(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"b-sides", "Live", "studio"}, names)
}

func TestFoldersUnreadable(t *testing.T) {
	_, err := Folders(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, errors.Is(err, apperrors.ErrUnreadable))
}

func TestLoadTagsOnGarbageFileKeepsEmptyMetadata(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "song.mp3")

	cat, err := Load(dir, Options{Extensions: testExtensions, ReadTags: true})
	require.NoError(t, err)
	require.Equal(t, 1, cat.Len())

	tr, ok := cat.Track(0)
	require.True(t, ok)
	assert.Empty(t, tr.Title)
	assert.Equal(t, "song", tr.DisplayTitle())
}

func TestTrackBounds(t *testing.T) {
	cat := New("/music", []core.Track{{Name: "a.mp3"}, {Name: "b.mp3"}})

	_, ok := cat.Track(-1)
	assert.False(t, ok)
	_, ok = cat.Track(2)
	assert.False(t, ok)

	tr, ok := cat.Track(1)
	require.True(t, ok)
	assert.Equal(t, "b.mp3", tr.Name)
	assert.Equal(t, 1, tr.ID)

	var nilCat *Catalog
	assert.Equal(t, 0, nilCat.Len())
}

func TestTracksReturnsCopy(t *testing.T) {
	cat := New("/music", []core.Track{{Name: "a.mp3"}})
	tracks := cat.Tracks()
	tracks[0].Name = "changed"

	tr, _ := cat.Track(0)
	assert.Equal(t, "a.mp3", tr.Name)
}

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.mp3", "b.mp3")

	first, err := Load(dir, Options{Extensions: testExtensions})
	require.NoError(t, err)
	second, err := Load(dir, Options{Extensions: testExtensions})
	require.NoError(t, err)

	fp1, err := first.Fingerprint()
	require.NoError(t, err)
	fp2, err := second.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	writeFiles(t, dir, "c.mp3")
	third, err := Load(dir, Options{Extensions: testExtensions})
	require.NoError(t, err)
	fp3, err := third.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}
