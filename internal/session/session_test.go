package session

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomgineer/empitrio/internal/audio/audiotest"
	"github.com/tomgineer/empitrio/internal/catalog"
	"github.com/tomgineer/empitrio/internal/core"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

const (
	pathA = "/music/a.mp3"
	pathB = "/music/b.mp3"
	pathC = "/music/c.mp3"
)

func library(paths ...string) *catalog.Catalog {
	tracks := make([]core.Track, len(paths))
	for i, p := range paths {
		tracks[i] = core.Track{Name: p[len("/music/"):], Path: p}
	}
	return catalog.New("/music", tracks)
}

func newSession(t *testing.T, paths ...string) (*Session, *audiotest.Fake) {
	t.Helper()
	engine := audiotest.NewFake()
	s := New(library(paths...), engine, Options{Volume: 0.5, AutoAdvance: true})
	engine.ResetCalls()
	return s, engine
}

func playing(id int) core.Transport { return core.Transport{State: core.Playing, TrackID: id} }
func paused(id int) core.Transport  { return core.Transport{State: core.Paused, TrackID: id} }

func TestNewSession(t *testing.T) {
	engine := audiotest.NewFake()
	s := New(library(pathA, pathB), engine, Options{Volume: 0.7})

	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Equal(t, 0, s.Selection())
	assert.Equal(t, 0.7, s.Volume())
	assert.Equal(t, 0.7, engine.Volume())
	assert.Equal(t, 0, engine.Active())
}

func TestNewSessionEmptyLibrary(t *testing.T) {
	s, engine := newSession(t)

	assert.Equal(t, -1, s.Selection())
	assert.False(t, s.Dispatch(Activate{}), "activate on empty catalog is a no-op")
	assert.False(t, s.Dispatch(MoveSelection{Delta: 1}))
	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Empty(t, engine.Calls())
}

func TestMoveSelectionClampsWithoutWrapping(t *testing.T) {
	s, _ := newSession(t, pathA, pathB, pathC)

	assert.False(t, s.Dispatch(MoveSelection{Delta: -1}))
	assert.Equal(t, 0, s.Selection())

	assert.True(t, s.Dispatch(MoveSelection{Delta: 1}))
	assert.True(t, s.Dispatch(MoveSelection{Delta: 1}))
	assert.Equal(t, 2, s.Selection())

	assert.False(t, s.Dispatch(MoveSelection{Delta: 1}), "stops at the end")
	assert.Equal(t, 2, s.Selection())

	s.Dispatch(MoveSelection{Delta: -100})
	assert.Equal(t, 0, s.Selection())
}

func TestMoveSelectionRandomSequencesStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for n := 1; n <= 6; n++ {
		paths := make([]string, n)
		for i := range paths {
			paths[i] = pathA
		}
		s, _ := newSession(t, paths...)

		for i := 0; i < 500; i++ {
			delta := rng.IntN(7) - 3
			before := s.Selection()
			s.Dispatch(MoveSelection{Delta: delta})
			sel := s.Selection()

			require.GreaterOrEqual(t, sel, 0)
			require.LessOrEqual(t, sel, n-1)
			want := min(max(before+delta, 0), n-1)
			require.Equal(t, want, sel, "no wrap: before=%d delta=%d", before, delta)
		}
	}
}

func TestMoveSelectionDoesNotAffectPlayback(t *testing.T) {
	s, engine := newSession(t, pathA, pathB, pathC)
	s.Dispatch(Activate{})
	engine.ResetCalls()

	s.Dispatch(MoveSelection{Delta: 2})

	assert.Equal(t, playing(0), s.Transport())
	assert.Equal(t, 2, s.Selection())
	assert.Empty(t, engine.Calls())
}

func TestActivateWhileStopped(t *testing.T) {
	s, engine := newSession(t, pathA, pathB, pathC)
	s.Dispatch(MoveSelection{Delta: 1})

	assert.True(t, s.Dispatch(Activate{}))

	assert.Equal(t, playing(1), s.Transport())
	assert.Equal(t, []string{"open " + pathB, "play " + pathB}, engine.Calls())
	assert.Equal(t, 1, engine.Sounding())
}

func TestActivateSameTrackPausesAndResumes(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	s.Dispatch(Activate{})
	engine.ResetCalls()

	s.Dispatch(Activate{})
	assert.Equal(t, paused(0), s.Transport())

	s.Dispatch(Activate{})
	assert.Equal(t, playing(0), s.Transport())

	assert.Equal(t, []string{"pause " + pathA, "resume " + pathA}, engine.Calls())
}

func TestActivateDifferentTrackWhilePlaying(t *testing.T) {
	s, engine := newSession(t, pathA, pathB, pathC)
	s.Dispatch(Activate{})
	first := engine.Last()
	engine.ResetCalls()

	s.Dispatch(MoveSelection{Delta: 2})
	s.Dispatch(Activate{})

	assert.Equal(t, playing(2), s.Transport())
	assert.Equal(t, []string{"stop " + pathA, "open " + pathC, "play " + pathC}, engine.Calls())
	assert.True(t, first.Stopped())
	assert.Equal(t, 1, engine.Active())
}

func TestActivateDifferentTrackWhilePaused(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	s.Dispatch(Activate{})
	s.Dispatch(TogglePause{})
	engine.ResetCalls()

	s.Dispatch(MoveSelection{Delta: 1})
	s.Dispatch(Activate{})

	assert.Equal(t, playing(1), s.Transport())
	assert.Equal(t, []string{"stop " + pathA, "open " + pathB, "play " + pathB}, engine.Calls())
	assert.Equal(t, 1, engine.Active())
}

func TestTogglePausePairIsIdentity(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	s.Dispatch(Activate{})
	before := s.Transport()
	handle := engine.Last()

	require.True(t, s.Dispatch(TogglePause{}))
	assert.Equal(t, paused(0), s.Transport())
	assert.True(t, handle.Paused())

	require.True(t, s.Dispatch(TogglePause{}))
	assert.Equal(t, before, s.Transport())
	assert.Same(t, handle, engine.Last())
	assert.False(t, handle.Paused())
	assert.Equal(t, 1, engine.Active())
}

func TestTogglePauseWhileStoppedIsNoop(t *testing.T) {
	s, engine := newSession(t, pathA)

	assert.False(t, s.Dispatch(TogglePause{}))
	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Empty(t, engine.Calls())
}

func TestStopWhilePlaying(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	s.Dispatch(Activate{})

	assert.True(t, s.Dispatch(Stop{}))
	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Equal(t, 0, engine.Active())

	assert.False(t, s.Dispatch(Stop{}), "second stop changes nothing")
}

func TestStopWhilePaused(t *testing.T) {
	s, engine := newSession(t, pathA)
	s.Dispatch(Activate{})
	s.Dispatch(TogglePause{})

	s.Dispatch(Stop{})
	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Equal(t, 0, engine.Active())
}

func TestFinishedAdvancesToNextTrack(t *testing.T) {
	s, engine := newSession(t, pathA, pathB, pathC)
	s.Dispatch(Activate{})
	engine.ResetCalls()

	assert.False(t, s.Tick(), "nothing happens before the stream ends")

	engine.Last().Finish()
	assert.True(t, s.Tick())

	assert.Equal(t, playing(1), s.Transport())
	assert.Equal(t, 1, s.Selection())
	assert.Equal(t, []string{"stop " + pathA, "open " + pathB, "play " + pathB}, engine.Calls())
	assert.Equal(t, 1, s.Played())
	assert.Equal(t, 1, engine.Active())
}

func TestFinishedLastTrackStops(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	s.Dispatch(MoveSelection{Delta: 1})
	s.Dispatch(Activate{})

	engine.Last().Finish()
	assert.True(t, s.Tick())

	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Equal(t, 1, s.Selection())
	assert.Equal(t, 0, engine.Active())
	assert.False(t, s.Tick())
}

func TestFinishedWithAutoAdvanceDisabled(t *testing.T) {
	engine := audiotest.NewFake()
	s := New(library(pathA, pathB), engine, Options{Volume: 1})
	s.Dispatch(Activate{})

	engine.Last().Finish()
	s.Tick()

	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Equal(t, 0, s.Selection())
}

func TestPausedStreamIsNotPolledForFinish(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	s.Dispatch(Activate{})
	s.Dispatch(TogglePause{})

	engine.Last().Finish()
	assert.False(t, s.Tick())
	assert.Equal(t, paused(0), s.Transport())
}

func TestScenarioAutoPlaysNextTrack(t *testing.T) {
	s, engine := newSession(t, pathA, pathB, pathC)

	s.Dispatch(Activate{})
	require.Equal(t, playing(0), s.Transport())

	engine.Last().Finish()
	s.Tick()

	assert.Equal(t, playing(1), s.Transport())
	assert.Equal(t, 1, s.Selection())
	assert.Equal(t, pathB, engine.Last().Path())
}

func TestScenarioSingleUnplayableTrack(t *testing.T) {
	s, engine := newSession(t, pathA)
	engine.FailOpen(pathA)

	assert.True(t, s.Dispatch(Activate{}))

	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Equal(t, []string{"open " + pathA}, engine.Calls())

	notice, ok := s.TakeNotice()
	require.True(t, ok)
	assert.True(t, errors.Is(notice.Err, apperrors.ErrUnplayable))

	_, ok = s.TakeNotice()
	assert.False(t, ok, "notice is consumed")
}

func TestAutoAdvanceSkipsUnplayableTracks(t *testing.T) {
	s, engine := newSession(t, pathA, pathB, pathC)
	engine.FailOpen(pathB)
	s.Dispatch(Activate{})
	engine.ResetCalls()

	engine.Last().Finish()
	s.Tick()

	assert.Equal(t, playing(2), s.Transport())
	assert.Equal(t, 2, s.Selection())
	assert.Equal(t, []string{"stop " + pathA, "open " + pathB, "open " + pathC, "play " + pathC}, engine.Calls())

	notice, ok := s.TakeNotice()
	require.True(t, ok)
	assert.Contains(t, notice.Message, "Skipped 1")
}

func TestAutoAdvanceAllRemainingFail(t *testing.T) {
	s, engine := newSession(t, pathA, pathB, pathC)
	engine.FailOpen(pathB, pathC)
	s.Dispatch(Activate{})
	engine.ResetCalls()

	engine.Last().Finish()
	s.Tick()

	assert.Equal(t, core.StoppedTransport, s.Transport())
	assert.Equal(t, []string{"stop " + pathA, "open " + pathB, "open " + pathC}, engine.Calls())
	assert.Equal(t, 0, engine.Active())

	notice, ok := s.TakeNotice()
	require.True(t, ok)
	assert.Error(t, notice.Err)
}

func TestActivateOnUnplayableSkipsForward(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	engine.FailOpen(pathA)

	s.Dispatch(Activate{})

	assert.Equal(t, playing(1), s.Transport())
	assert.Equal(t, 1, s.Selection())
}

func TestOpenAttemptsAreBoundedByLibraryLength(t *testing.T) {
	paths := []string{pathA, pathB, pathC}
	s, engine := newSession(t, paths...)
	engine.FailOpen(paths...)

	s.Dispatch(Activate{})

	assert.Len(t, engine.Calls(), len(paths))
	assert.Equal(t, core.StoppedTransport, s.Transport())
}

func TestRapidActivateIsProcessedInOrder(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)

	s.Dispatch(Activate{})
	s.Dispatch(Activate{})
	s.Dispatch(Activate{})

	// open+play, then pause, then resume: never a second open.
	assert.Equal(t, []string{
		"open " + pathA, "play " + pathA,
		"pause " + pathA,
		"resume " + pathA,
	}, engine.Calls())
	assert.Equal(t, playing(0), s.Transport())
}

func TestChangeVolume(t *testing.T) {
	s, engine := newSession(t, pathA)

	assert.True(t, s.Dispatch(ChangeVolume{Delta: 0.05}))
	assert.Equal(t, 0.55, s.Volume())
	assert.Equal(t, 0.55, engine.Volume())

	s.Dispatch(ChangeVolume{Delta: 10})
	assert.Equal(t, 1.0, s.Volume())
	assert.False(t, s.Dispatch(ChangeVolume{Delta: 0.05}), "already at max")

	s.Dispatch(ChangeVolume{Delta: -10})
	assert.Equal(t, 0.0, engine.Volume())
	assert.Equal(t, core.StoppedTransport, s.Transport())
}

func TestVolumeStepsLandOnExactValues(t *testing.T) {
	s, _ := newSession(t, pathA)
	for i := 0; i < 3; i++ {
		s.Dispatch(ChangeVolume{Delta: -0.1})
	}
	assert.Equal(t, 0.2, s.Volume())
}

func TestSnapshot(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)

	snap := s.Snapshot()
	assert.Nil(t, snap.Track)
	assert.Equal(t, 0.5, snap.Volume)

	s.Dispatch(Activate{})
	engine.Last().SetProgress(30*time.Second, 3*time.Minute)

	snap = s.Snapshot()
	require.NotNil(t, snap.Track)
	assert.Equal(t, "a.mp3", snap.Track.Name)
	assert.Equal(t, 30*time.Second, snap.Elapsed)
	assert.Equal(t, 3*time.Minute, snap.Duration)
	assert.Equal(t, 3*time.Minute, snap.Track.Duration)
	assert.Equal(t, playing(0), snap.Transport)
}

func TestHistory(t *testing.T) {
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	engine := audiotest.NewFake()
	s := New(library(pathA, pathB, pathC), engine, Options{
		Volume:      1,
		AutoAdvance: true,
		Now:         func() time.Time { return clock },
	})

	s.Dispatch(Activate{})
	engine.Last().Finish()
	s.Tick()
	s.Dispatch(Stop{})

	h := s.History()
	require.Len(t, h, 2)
	assert.Equal(t, 1, h[0].TrackID)
	assert.False(t, h[0].Completed)
	assert.Equal(t, 0, h[1].TrackID)
	assert.True(t, h[1].Completed)
	assert.Equal(t, clock, h[1].StartedAt)
}

func TestCloseStopsStreamAndIgnoresCommands(t *testing.T) {
	s, engine := newSession(t, pathA, pathB)
	s.Dispatch(Activate{})

	s.Close()
	assert.Equal(t, 0, engine.Active())
	assert.Equal(t, core.StoppedTransport, s.Transport())

	assert.False(t, s.Dispatch(Activate{}))
	assert.False(t, s.Tick())
	s.Close()
}
