package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
	"github.com/tomgineer/empitrio/internal/core"
)

// xcad palette
var (
	xcadText      = lipgloss.Color("#CCCCCC")
	xcadWhite     = lipgloss.Color("#FFFFFF")
	xcadBlue      = lipgloss.Color("#2B4FFF")
	xcadTitle     = lipgloss.Color("#F1F1F1")
	xcadBorder    = lipgloss.Color("#999999")
	xcadBrightBlu = lipgloss.Color("#5C78FF")
	xcadCyan      = lipgloss.Color("#28B9FF")
	xcadWarning   = lipgloss.Color("#FF4040")
	xcadDim       = lipgloss.Color("#666666")
)

// Theme holds the colors and derived styles used by every panel.
type Theme struct {
	Name string

	Text          lipgloss.TerminalColor
	Title         lipgloss.TerminalColor
	Border        lipgloss.TerminalColor
	Accent        lipgloss.TerminalColor
	Status        lipgloss.TerminalColor
	Warning       lipgloss.TerminalColor
	Muted         lipgloss.TerminalColor
	Faint         lipgloss.TerminalColor
	SelectionText lipgloss.TerminalColor
	SelectionBg   lipgloss.TerminalColor

	// Text styles
	Header    lipgloss.Style
	Bold      lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Dim       lipgloss.Style
	Selected  lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style

	// Border styles
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
}

// NewTheme returns the named theme. Unknown names fall back to xcad.
func NewTheme(name string) Theme {
	switch name {
	case "latte":
		return fromFlavor(name, catppuccin.Latte)
	case "frappe":
		return fromFlavor(name, catppuccin.Frappe)
	case "macchiato":
		return fromFlavor(name, catppuccin.Macchiato)
	case "mocha":
		return fromFlavor(name, catppuccin.Mocha)
	case "auto":
		return adaptive()
	}
	return xcad()
}

func xcad() Theme {
	return build(Theme{
		Name:          "xcad",
		Text:          xcadText,
		Title:         xcadTitle,
		Border:        xcadBorder,
		Accent:        xcadCyan,
		Status:        xcadBrightBlu,
		Warning:       xcadWarning,
		Muted:         xcadBorder,
		Faint:         xcadDim,
		SelectionText: xcadWhite,
		SelectionBg:   xcadBlue,
	})
}

func fromFlavor(name string, f catppuccin.Flavor) Theme {
	c := func(col catppuccin.Color) lipgloss.Color { return lipgloss.Color(col.Hex) }
	return build(Theme{
		Name:          name,
		Text:          c(f.Text()),
		Title:         c(f.Lavender()),
		Border:        c(f.Overlay0()),
		Accent:        c(f.Green()),
		Status:        c(f.Blue()),
		Warning:       c(f.Red()),
		Muted:         c(f.Subtext0()),
		Faint:         c(f.Overlay1()),
		SelectionText: c(f.Base()),
		SelectionBg:   c(f.Mauve()),
	})
}

// adaptive picks Latte on light terminals and Mocha on dark ones.
func adaptive() Theme {
	light, dark := catppuccin.Latte, catppuccin.Mocha
	c := func(pick func(catppuccin.Flavor) catppuccin.Color) lipgloss.AdaptiveColor {
		return lipgloss.AdaptiveColor{Light: pick(light).Hex, Dark: pick(dark).Hex}
	}
	return build(Theme{
		Name:          "auto",
		Text:          c(catppuccin.Flavor.Text),
		Title:         c(catppuccin.Flavor.Lavender),
		Border:        c(catppuccin.Flavor.Overlay0),
		Accent:        c(catppuccin.Flavor.Green),
		Status:        c(catppuccin.Flavor.Blue),
		Warning:       c(catppuccin.Flavor.Red),
		Muted:         c(catppuccin.Flavor.Subtext0),
		Faint:         c(catppuccin.Flavor.Overlay1),
		SelectionText: c(catppuccin.Flavor.Base),
		SelectionBg:   c(catppuccin.Flavor.Mauve),
	})
}

func build(t Theme) Theme {
	t.Header = lipgloss.NewStyle().Bold(true).Foreground(t.Title)
	t.Bold = lipgloss.NewStyle().Bold(true).Foreground(t.Text)
	t.Subtitle = lipgloss.NewStyle().Foreground(t.Muted)
	t.Label = lipgloss.NewStyle().Foreground(t.Faint)
	t.Highlight = lipgloss.NewStyle().Bold(true).Foreground(t.Status)
	t.Dim = lipgloss.NewStyle().Foreground(t.Faint)
	t.Selected = lipgloss.NewStyle().Foreground(t.SelectionText).Background(t.SelectionBg)
	t.Playing = lipgloss.NewStyle().Foreground(t.Accent)
	t.Paused = lipgloss.NewStyle().Foreground(t.Status)
	t.Error = lipgloss.NewStyle().Foreground(t.Warning)
	t.Info = lipgloss.NewStyle().Foreground(t.Status)

	t.BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border)
	t.FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Status)
	return t
}

// Panel creates a styled panel with optional focus
func (t Theme) Panel(focused bool) lipgloss.Style {
	if focused {
		return t.FocusedBorder.Padding(0, 1)
	}
	return t.BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func (t Theme) PanelTitle(title string, focused bool) string {
	style := t.Label
	if focused {
		style = t.Highlight
	}
	return style.Render("┤ " + title + " ├")
}

// ProgressBar renders fraction (0..1) as a bar of the given width.
func (t Theme) ProgressBar(fraction float64, width int) string {
	if width < 0 {
		width = 0
	}
	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(t.Status)
	emptyStyle := lipgloss.NewStyle().Foreground(t.Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for the transport state
func (t Theme) StatusIcon(state core.TransportState) string {
	switch state {
	case core.Playing:
		return t.Playing.Render("▶")
	case core.Paused:
		return t.Paused.Render("⏸")
	}
	return t.Dim.Render("■")
}
