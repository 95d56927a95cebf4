// Package audiotest provides an in-memory core.Engine for tests that must
// run without an audio device.
package audiotest

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/tomgineer/empitrio/internal/core"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

// Fake is an in-memory core.Engine for tests. It records every call as
// "<op> <path>" in order.
type Fake struct {
	mu       sync.Mutex
	calls    []string
	failures map[string]bool
	streams  []*FakeStream
	level    float64
	closed   bool
}

// NewFake creates an empty fake engine at full volume.
func NewFake() *Fake {
	return &Fake{
		failures: make(map[string]bool),
		level:    1,
	}
}

// FailOpen makes Open return ErrUnplayable for path.
func (f *Fake) FailOpen(paths ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range paths {
		f.failures[p] = true
	}
}

// Open records the call and returns a new FakeStream.
func (f *Fake) Open(path string) (core.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, "open "+path)
	if f.closed {
		return nil, fmt.Errorf("%w: engine closed", apperrors.ErrDeviceUnavailable)
	}
	if f.failures[path] {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnplayable, path)
	}

	s := &FakeStream{fake: f, path: path}
	f.streams = append(f.streams, s)
	return s, nil
}

// SetVolume records the level.
func (f *Fake) SetVolume(level float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = clamp(level)
	f.calls = append(f.calls, fmt.Sprintf("volume %.2f", f.level))
}

// Volume returns the last level set.
func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.level
}

// Close stops every stream.
func (f *Fake) Close() error {
	f.mu.Lock()
	streams := append([]*FakeStream(nil), f.streams...)
	f.closed = true
	f.mu.Unlock()

	for _, s := range streams {
		s.Stop()
	}
	return nil
}

// Calls returns the recorded calls.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// ResetCalls clears the call log.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Active returns the number of streams opened and not yet stopped.
func (f *Fake) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.streams {
		if !s.stopped {
			n++
		}
	}
	return n
}

// Sounding returns the number of streams currently producing audio.
func (f *Fake) Sounding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.streams {
		if s.playing && !s.paused && !s.stopped {
			n++
		}
	}
	return n
}

// Last returns the most recently opened stream, or nil.
func (f *Fake) Last() *FakeStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.streams) == 0 {
		return nil
	}
	return f.streams[len(f.streams)-1]
}

func (f *Fake) record(op, path string) {
	f.mu.Lock()
	f.calls = append(f.calls, op+" "+path)
	f.mu.Unlock()
}

// FakeStream is a stream opened by Fake.
type FakeStream struct {
	fake *Fake
	path string

	mu       sync.Mutex
	playing  bool
	paused   bool
	stopped  bool
	finished bool
	elapsed  time.Duration
	duration time.Duration
}

// Path returns the opened file path.
func (s *FakeStream) Path() string { return s.path }

func (s *FakeStream) Play() {
	s.fake.record("play", s.path)
	s.mu.Lock()
	s.playing = true
	s.paused = false
	s.mu.Unlock()
}

func (s *FakeStream) Pause() {
	s.fake.record("pause", s.path)
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *FakeStream) Resume() {
	s.fake.record("resume", s.path)
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

func (s *FakeStream) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.playing = false
	s.mu.Unlock()
	s.fake.record("stop", s.path)
}

func (s *FakeStream) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

func (s *FakeStream) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *FakeStream) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Paused reports whether the stream is paused.
func (s *FakeStream) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Stopped reports whether Stop has been called.
func (s *FakeStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// SetProgress sets the reported elapsed time and duration.
func (s *FakeStream) SetProgress(elapsed, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = elapsed
	s.duration = duration
}

// Finish marks the stream as having reached end of output.
func (s *FakeStream) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished = true
	s.elapsed = s.duration
}

var _ core.Engine = (*Fake)(nil)

func clamp(level float64) float64 {
	return math.Max(0, math.Min(1, level))
}
