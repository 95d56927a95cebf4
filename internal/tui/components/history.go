package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/tomgineer/empitrio/internal/core"
	"github.com/tomgineer/empitrio/internal/session"
	"github.com/tomgineer/empitrio/internal/tui/styles"
)

// History displays tracks started in this session, most recent first
type History struct {
	theme styles.Theme
}

// NewHistory creates a new History component
func NewHistory(theme styles.Theme) *History {
	return &History{theme: theme}
}

// Render renders the history panel
func (h *History) Render(entries []session.HistoryEntry, tracks []core.Track, width, height int, focused bool) string {
	title := h.theme.PanelTitle("History", focused)

	var content string
	if len(entries) == 0 {
		content = h.theme.Subtitle.Render("Nothing played yet")
	} else {
		content = h.renderHistory(entries, tracks, width-4, height-4)
	}

	panel := h.theme.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(entries []session.HistoryEntry, tracks []core.Track, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	for _, entry := range entries {
		if len(lines) >= maxLines {
			break
		}
		if entry.TrackID < 0 || entry.TrackID >= len(tracks) {
			continue
		}
		track := tracks[entry.TrackID]

		// Time ago (right-aligned)
		ago := humanize.Time(entry.StartedAt)

		icon := "♪"
		if entry.Completed {
			icon = "✓"
		}

		// icon + space + gap before the time
		name := truncate(track.DisplayTitle(), width-len(ago)-3)
		padding := width - 2 - lipgloss.Width(name) - len(ago)
		if padding < 1 {
			padding = 1
		}

		line := h.theme.Dim.Render(icon) + " " + name +
			lipgloss.NewStyle().Width(padding).Render("") +
			h.theme.Dim.Render(ago)
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
