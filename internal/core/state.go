package core

import "fmt"

// TransportState is the playback lifecycle of the targeted track.
type TransportState int

const (
	Stopped TransportState = iota
	Playing
	Paused
)

func (s TransportState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Transport pairs a TransportState with the track it refers to.
// TrackID is -1 when State is Stopped.
type Transport struct {
	State   TransportState
	TrackID int
}

// StoppedTransport is the idle transport value.
var StoppedTransport = Transport{State: Stopped, TrackID: -1}

// Active returns true if a track is playing or paused.
func (t Transport) Active() bool {
	return t.State != Stopped
}

func (t Transport) String() string {
	if t.State == Stopped {
		return "Stopped"
	}
	name := "Playing"
	if t.State == Paused {
		name = "Paused"
	}
	return fmt.Sprintf("%s(%d)", name, t.TrackID)
}
