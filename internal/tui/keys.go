package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tomgineer/empitrio/internal/session"
)

// KeyMap holds every binding the player understands.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Activate key.Binding
	Back     key.Binding
	Pause    key.Binding
	Stop     key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Reload   key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "last"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "play/open"),
		),
		Back: key.NewBinding(
			key.WithKeys("backspace", "h"),
			key.WithHelp("⌫/h", "parent folder"),
		),
		Pause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space/p", "pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		VolUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "vol up"),
		),
		VolDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "vol down"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy path"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Activate, k.Pause, k.Stop, k.VolUp, k.VolDown, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Activate, k.Back, k.Pause, k.Stop, k.VolUp, k.VolDown},
		{k.Reload, k.Copy, k.Help, k.Quit},
	}
}

// commandForKey maps a key press to a session command. page is the number
// of rows PgUp/PgDn move by, step the volume change per press. Keys that are
// not playback commands report false.
func commandForKey(keys KeyMap, msg tea.KeyMsg, page int, step float64) (session.Command, bool) {
	if page < 1 {
		page = 1
	}

	switch {
	case key.Matches(msg, keys.Up):
		return session.MoveSelection{Delta: -1}, true
	case key.Matches(msg, keys.Down):
		return session.MoveSelection{Delta: 1}, true
	case key.Matches(msg, keys.PageUp):
		return session.MoveSelection{Delta: -page}, true
	case key.Matches(msg, keys.PageDown):
		return session.MoveSelection{Delta: page}, true
	case key.Matches(msg, keys.Home):
		return session.MoveSelection{Delta: -maxJump}, true
	case key.Matches(msg, keys.End):
		return session.MoveSelection{Delta: maxJump}, true
	case key.Matches(msg, keys.Activate):
		return session.Activate{}, true
	case key.Matches(msg, keys.Pause):
		return session.TogglePause{}, true
	case key.Matches(msg, keys.Stop):
		return session.Stop{}, true
	case key.Matches(msg, keys.VolUp):
		return session.ChangeVolume{Delta: step}, true
	case key.Matches(msg, keys.VolDown):
		return session.ChangeVolume{Delta: -step}, true
	}
	return nil, false
}

// maxJump moves the selection past either end; the session clamps it.
const maxJump = 1 << 30
