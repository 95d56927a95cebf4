package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomgineer/empitrio/internal/session"
	"github.com/tomgineer/empitrio/internal/tui/styles"
)

// NowPlaying displays the targeted track and transport
type NowPlaying struct {
	theme styles.Theme
}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying(theme styles.Theme) *NowPlaying {
	return &NowPlaying{theme: theme}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(snap session.Snapshot, width, height int, focused bool) string {
	title := n.theme.PanelTitle("Now Playing", focused)

	var content string
	if snap.Track == nil {
		content = lipgloss.JoinVertical(lipgloss.Left,
			n.theme.Subtitle.Render("Stopped"),
			"",
			n.renderProgress(snap, width-4),
			"",
			n.renderFooter(snap),
		)
	} else {
		content = n.renderTrack(snap, width-4)
	}

	panel := n.theme.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (n *NowPlaying) renderTrack(snap session.Snapshot, width int) string {
	track := snap.Track

	icon := n.theme.StatusIcon(snap.Transport.State)
	title := n.theme.Bold.Render(truncate(track.DisplayTitle(), width-2))

	lines := []string{icon + " " + title}
	if track.Artist != "" {
		lines = append(lines, "  "+n.theme.Subtitle.Render(truncate(track.Artist, width-2)))
	}
	if track.Album != "" {
		lines = append(lines, "  "+n.theme.Dim.Render(truncate(track.Album, width-2)))
	}
	lines = append(lines, "  "+n.theme.Dim.Render(truncate(track.Name, width-2)))

	lines = append(lines,
		"",
		n.renderProgress(snap, width),
		"",
		n.renderFooter(snap),
	)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (n *NowPlaying) renderProgress(snap session.Snapshot, width int) string {
	current, total := "--:--", "--:--"
	var fraction float64
	if snap.Track != nil {
		current = FormatDuration(snap.Elapsed)
		if snap.Duration > 0 {
			total = FormatDuration(snap.Duration)
			fraction = float64(snap.Elapsed) / float64(snap.Duration)
		}
	}

	// Account for times on either side
	barWidth := width - len(current) - len(total) - 2
	if barWidth < 10 {
		barWidth = 10
	}
	return fmt.Sprintf("%s %s %s", current, n.theme.ProgressBar(fraction, barWidth), total)
}

func (n *NowPlaying) renderFooter(snap session.Snapshot) string {
	volume := fmt.Sprintf("Volume %d%%", int(snap.Volume*100+0.5))
	if snap.Volume == 0 {
		volume = "Muted"
	}
	played := fmt.Sprintf("Played %d", snap.Played)
	return n.theme.Subtitle.Render(volume) + n.theme.Dim.Render("  ·  ") + n.theme.Subtitle.Render(played)
}

// FormatDuration renders d as mm:ss
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d", m, s)
}
