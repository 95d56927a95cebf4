// Package audio plays decoded files through the default output device.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/tomgineer/empitrio/internal/core"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

// DefaultSampleRate is the device rate every stream is resampled to.
const DefaultSampleRate = beep.SampleRate(44100)

const resampleQuality = 4

// Engine implements core.Engine on the beep speaker. The speaker mixes on
// its own goroutine; every mutation of a live streamer happens under
// speaker.Lock.
type Engine struct {
	logger     *slog.Logger
	sampleRate beep.SampleRate

	mu     sync.Mutex
	level  float64
	active map[*stream]struct{}
	closed bool
}

// NewEngine opens the output device. It fails with ErrDeviceUnavailable when
// no device can be initialised.
func NewEngine(logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sr := DefaultSampleRate
	if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDeviceUnavailable, err)
	}
	logger.Debug("audio device ready", "sample_rate", int(sr))

	return &Engine{
		logger:     logger,
		sampleRate: sr,
		level:      1,
		active:     make(map[*stream]struct{}),
	}, nil
}

// Open decodes path and prepares a paused stream.
func (e *Engine) Open(path string) (core.Stream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, fmt.Errorf("%w: engine closed", apperrors.ErrDeviceUnavailable)
	}

	decoder, format, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	s := &stream{
		engine:  e,
		path:    path,
		decoder: decoder,
		format:  format,
	}

	var src beep.Streamer = decoder
	if format.SampleRate != e.sampleRate {
		src = beep.Resample(resampleQuality, format.SampleRate, e.sampleRate, src)
	}
	s.ctrl = &beep.Ctrl{Streamer: src, Paused: true}
	s.volume = &effects.Volume{Streamer: s.ctrl, Base: 2}
	applyLevel(s.volume, e.level)
	s.gate = &gate{Streamer: beep.Seq(s.volume, beep.Callback(func() {
		s.finished.Store(true)
	}))}

	e.active[s] = struct{}{}
	e.logger.Debug("stream opened", "path", path, "sample_rate", int(format.SampleRate))
	return s, nil
}

// SetVolume sets the output level of every current and future stream.
func (e *Engine) SetVolume(level float64) {
	level = clamp(level)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.level = level
	speaker.Lock()
	for s := range e.active {
		applyLevel(s.volume, level)
	}
	speaker.Unlock()
}

// Volume returns the current output level.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.level
}

// Active returns the number of streams that have not been stopped.
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Close stops every stream and releases the device.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	streams := make([]*stream, 0, len(e.active))
	for s := range e.active {
		streams = append(streams, s)
	}
	e.mu.Unlock()

	for _, s := range streams {
		s.Stop()
	}
	speaker.Clear()
	speaker.Close()
	e.logger.Debug("audio device closed")
	return nil
}

func (e *Engine) release(s *stream) {
	e.mu.Lock()
	delete(e.active, s)
	e.mu.Unlock()
}

// applyLevel maps a linear level onto the exponential beep volume.
func applyLevel(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}

func clamp(level float64) float64 {
	return math.Max(0, math.Min(1, level))
}

// stream is one decoded track wired into the speaker mixer.
type stream struct {
	engine  *Engine
	path    string
	decoder beep.StreamSeekCloser
	format  beep.Format
	ctrl    *beep.Ctrl
	volume  *effects.Volume
	gate    *gate

	started  bool
	stopped  bool
	finished atomic.Bool
}

func (s *stream) Play() {
	if s.started || s.stopped {
		s.Resume()
		return
	}
	s.started = true
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
	speaker.Play(s.gate)
}

func (s *stream) Pause() {
	if s.stopped {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = true
	speaker.Unlock()
}

func (s *stream) Resume() {
	if s.stopped {
		return
	}
	speaker.Lock()
	s.ctrl.Paused = false
	speaker.Unlock()
}

func (s *stream) Stop() {
	if s.stopped {
		return
	}
	s.stopped = true

	// Once the gate is shut the mixer drops the streamer on its next pull.
	speaker.Lock()
	s.gate.shut = true
	s.ctrl.Paused = true
	speaker.Unlock()

	if err := s.decoder.Close(); err != nil {
		s.engine.logger.Debug("decoder close failed", "path", s.path, "error", err)
	}
	s.engine.release(s)
}

func (s *stream) Elapsed() time.Duration {
	if s.stopped {
		return 0
	}
	speaker.Lock()
	pos := s.decoder.Position()
	speaker.Unlock()
	return s.format.SampleRate.D(pos)
}

func (s *stream) Duration() time.Duration {
	if s.stopped {
		return 0
	}
	speaker.Lock()
	n := s.decoder.Len()
	speaker.Unlock()
	return s.format.SampleRate.D(n)
}

func (s *stream) Finished() bool {
	return s.finished.Load()
}

// gate ends its streamer early once shut.
type gate struct {
	beep.Streamer
	shut bool
}

func (g *gate) Stream(samples [][2]float64) (int, bool) {
	if g.shut {
		return 0, false
	}
	return g.Streamer.Stream(samples)
}

var _ core.Engine = (*Engine)(nil)
