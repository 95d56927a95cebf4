package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

const (
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extWAV  = ".wav"
	extOGG  = ".ogg"
)

// Supported reports whether path has an extension the engine can decode.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3, extFLAC, extWAV, extOGG:
		return true
	}
	return false
}

// decodeFile opens path and returns a seekable decoder. Closing the
// decoder closes the file.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("%w: %s: %v", apperrors.ErrUnplayable, filepath.Base(path), err)
	}

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case extMP3:
		s, format, err = mp3.Decode(f)
	case extFLAC:
		s, format, err = flac.Decode(f)
	case extWAV:
		s, format, err = wav.Decode(f)
	case extOGG:
		s, format, err = vorbis.Decode(f)
	default:
		err = fmt.Errorf("unsupported format %q", filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("%w: %s: %v", apperrors.ErrUnplayable, filepath.Base(path), err)
	}

	// flac and wav decoders do not own the file.
	return &fileStreamer{StreamSeekCloser: s, file: f}, format, nil
}

// fileStreamer closes the underlying file together with the decoder.
type fileStreamer struct {
	beep.StreamSeekCloser
	file *os.File
}

func (f *fileStreamer) Close() error {
	err := f.StreamSeekCloser.Close()
	_ = f.file.Close()
	return err
}

// Probe decodes the header of path and returns its duration.
func Probe(path string) (time.Duration, error) {
	s, format, err := decodeFile(path)
	if err != nil {
		return 0, err
	}
	defer s.Close()

	return format.SampleRate.D(s.Len()), nil
}
