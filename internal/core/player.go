package core

import "time"

// Engine owns the audio output device and opens one stream per track.
// Only one stream should be producing audio at a time; callers stop the
// previous stream before opening the next.
type Engine interface {
	// Open begins decoding path. The stream is silent until Play.
	Open(path string) (Stream, error)

	// SetVolume sets the process-wide output level in [0, 1].
	SetVolume(level float64)
	Volume() float64

	// Close stops all streams and releases the device.
	Close() error
}

// Stream is a single open, decodable audio stream.
type Stream interface {
	Play()
	Pause()
	Resume()
	// Stop releases every resource held by the stream. It is safe to call twice.
	Stop()

	Elapsed() time.Duration
	// Duration returns 0 when the length is unknown.
	Duration() time.Duration
	// Finished becomes true once output reaches end of stream and never resets.
	Finished() bool
}
