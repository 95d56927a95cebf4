package session

// Command is an abstract request from the view.
type Command interface {
	command()
}

// MoveSelection moves the selection by Delta, clamped to the list bounds.
type MoveSelection struct {
	Delta int
}

// Activate plays, pauses or resumes the selected track.
type Activate struct{}

// TogglePause pauses a playing track or resumes a paused one.
type TogglePause struct{}

// Stop ends playback.
type Stop struct{}

// ChangeVolume adjusts the output level by Delta.
type ChangeVolume struct {
	Delta float64
}

func (MoveSelection) command() {}
func (Activate) command()      {}
func (TogglePause) command()   {}
func (Stop) command()          {}
func (ChangeVolume) command()  {}
