// Package session implements the interactive playback state machine.
//
// A Session owns the selection, the transport state and the single active
// audio stream. It is driven from one goroutine: the UI loop dispatches
// commands in arrival order and calls Tick on every redraw tick to sample
// the engine's finished flag. Nothing in here blocks on the audio thread.
package session

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tomgineer/empitrio/internal/core"
)

const maxHistory = 50

// Library is the read-only track list a Session plays from.
type Library interface {
	Len() int
	Track(id int) (core.Track, bool)
}

// Options configures a new Session.
type Options struct {
	// Volume is the initial output level in [0, 1].
	Volume float64
	// AutoAdvance starts the next track when the current one finishes.
	AutoAdvance bool
	Logger      *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Notice is a transient message for the status line.
type Notice struct {
	Message string
	Err     error
	At      time.Time
}

// HistoryEntry records one started track.
type HistoryEntry struct {
	TrackID   int
	StartedAt time.Time
	Completed bool
}

// Snapshot is a consistent copy of the state the view renders.
type Snapshot struct {
	Transport core.Transport
	Selection int
	// Track is the playing or paused track; nil when stopped.
	Track    *core.Track
	Elapsed  time.Duration
	Duration time.Duration
	Volume   float64
	Played   int
}

// Session is the playback state machine.
type Session struct {
	library     Library
	engine      core.Engine
	logger      *slog.Logger
	now         func() time.Time
	autoAdvance bool

	selection int
	transport core.Transport
	stream    core.Stream
	volume    float64

	notice  *Notice
	history []HistoryEntry
	played  int
	closed  bool
}

// New creates a stopped Session with the first track selected.
func New(library Library, engine core.Engine, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		library:     library,
		engine:      engine,
		logger:      opts.Logger,
		now:         opts.Now,
		autoAdvance: opts.AutoAdvance,
		selection:   -1,
		transport:   core.StoppedTransport,
		volume:      clampVolume(opts.Volume),
	}
	if library.Len() > 0 {
		s.selection = 0
	}
	engine.SetVolume(s.volume)
	return s
}

// Dispatch applies cmd and reports whether any observable state changed.
func (s *Session) Dispatch(cmd Command) bool {
	if s.closed {
		return false
	}

	switch c := cmd.(type) {
	case MoveSelection:
		return s.move(c.Delta)
	case Activate:
		return s.activate()
	case TogglePause:
		return s.togglePause()
	case Stop:
		return s.stop()
	case ChangeVolume:
		return s.changeVolume(c.Delta)
	}
	return false
}

// Tick samples the active stream and auto-advances when it has finished.
// It reports whether the transport state changed.
func (s *Session) Tick() bool {
	if s.closed || s.transport.State != core.Playing || s.stream == nil {
		return false
	}
	if !s.stream.Finished() {
		return false
	}

	finished := s.transport.TrackID
	s.halt(true)
	s.played++
	s.logger.Debug("track finished", "track", finished)

	next := finished + 1
	if !s.autoAdvance || next >= s.library.Len() {
		return true
	}
	s.startFrom(next)
	return true
}

// Close stops any active stream. The Session ignores commands afterwards.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.halt(false)
	s.closed = true
}

// Selection returns the selected track ID, or -1 if the library is empty.
func (s *Session) Selection() int {
	return s.selection
}

// Transport returns the current transport state.
func (s *Session) Transport() core.Transport {
	return s.transport
}

// Volume returns the output level in [0, 1].
func (s *Session) Volume() float64 {
	return s.volume
}

// Played returns the number of tracks that played to the end.
func (s *Session) Played() int {
	return s.played
}

// History returns started tracks, most recent first.
func (s *Session) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	for i, h := range s.history {
		out[len(s.history)-1-i] = h
	}
	return out
}

// TakeNotice returns the pending notice and clears it.
func (s *Session) TakeNotice() (Notice, bool) {
	if s.notice == nil {
		return Notice{}, false
	}
	n := *s.notice
	s.notice = nil
	return n, true
}

// Snapshot returns the state for rendering.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Transport: s.transport,
		Selection: s.selection,
		Volume:    s.volume,
		Played:    s.played,
	}
	if !s.transport.Active() {
		return snap
	}

	if track, ok := s.library.Track(s.transport.TrackID); ok {
		snap.Track = &track
		snap.Duration = track.Duration
	}
	if s.stream != nil {
		snap.Elapsed = s.stream.Elapsed()
		if d := s.stream.Duration(); d > 0 {
			snap.Duration = d
		}
	}
	if snap.Track != nil {
		snap.Track.Duration = snap.Duration
	}
	return snap
}

func (s *Session) move(delta int) bool {
	n := s.library.Len()
	if n == 0 {
		return false
	}

	next := s.selection + delta
	if next < 0 {
		next = 0
	}
	if next > n-1 {
		next = n - 1
	}
	if next == s.selection {
		return false
	}
	s.selection = next
	return true
}

func (s *Session) activate() bool {
	if s.library.Len() == 0 || s.selection < 0 {
		return false
	}

	switch {
	case s.transport.State == core.Playing && s.transport.TrackID == s.selection:
		return s.togglePause()
	case s.transport.State == core.Paused && s.transport.TrackID == s.selection:
		return s.togglePause()
	}

	// Only one stream may sound at a time: release the old one first.
	s.halt(false)
	s.startFrom(s.selection)
	return true
}

func (s *Session) togglePause() bool {
	switch s.transport.State {
	case core.Playing:
		s.stream.Pause()
		s.transport.State = core.Paused
	case core.Paused:
		s.stream.Resume()
		s.transport.State = core.Playing
	default:
		return false
	}
	s.logger.Debug("transport", "state", s.transport.String())
	return true
}

func (s *Session) stop() bool {
	if !s.transport.Active() {
		return false
	}
	s.halt(false)
	s.logger.Debug("transport", "state", s.transport.String())
	return true
}

func (s *Session) changeVolume(delta float64) bool {
	v := clampVolume(s.volume + delta)
	if v == s.volume {
		return false
	}
	s.volume = v
	s.engine.SetVolume(v)
	return true
}

// startFrom opens tracks from id onward until one plays. Each track is tried
// at most once, so the loop is bounded by the library length. When nothing
// can be opened the Session settles in Stopped with an error notice.
func (s *Session) startFrom(id int) {
	n := s.library.Len()
	var (
		lastErr error
		skipped int
	)

	for attempts := 0; id < n && attempts < n; id, attempts = id+1, attempts+1 {
		track, ok := s.library.Track(id)
		if !ok {
			continue
		}

		stream, err := s.engine.Open(track.Path)
		if err != nil {
			s.logger.Warn("cannot open track", "track", track.Name, "error", err)
			lastErr = err
			skipped++
			continue
		}

		stream.Play()
		s.stream = stream
		s.transport = core.Transport{State: core.Playing, TrackID: id}
		s.selection = id
		s.record(id)
		s.logger.Debug("transport", "state", s.transport.String(), "path", track.Path)

		if skipped > 0 {
			s.setNotice(fmt.Sprintf("Skipped %d unplayable track(s)", skipped), lastErr)
		}
		return
	}

	s.transport = core.StoppedTransport
	s.stream = nil
	if lastErr != nil {
		s.setNotice("No playable track found", lastErr)
	}
}

// halt stops the active stream and returns to Stopped.
func (s *Session) halt(completed bool) {
	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
	if completed && len(s.history) > 0 {
		s.history[len(s.history)-1].Completed = true
	}
	s.transport = core.StoppedTransport
}

func (s *Session) record(id int) {
	s.history = append(s.history, HistoryEntry{TrackID: id, StartedAt: s.now()})
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
}

func (s *Session) setNotice(msg string, err error) {
	s.notice = &Notice{Message: msg, Err: err, At: s.now()}
}

// clampVolume limits v to [0, 1] and rounds to whole percents so repeated
// steps land on exact values.
func clampVolume(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Max(0, math.Min(1, v))
}
