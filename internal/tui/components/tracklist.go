package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/tomgineer/empitrio/internal/core"
	"github.com/tomgineer/empitrio/internal/tui/styles"
)

// ParentFolder is the folder row that leads to the parent directory.
const ParentFolder = ".."

// TrackList displays folders followed by the catalog, with the cursor row
// highlighted
type TrackList struct {
	theme  styles.Theme
	offset int
}

// NewTrackList creates a new TrackList component
func NewTrackList(theme styles.Theme) *TrackList {
	return &TrackList{theme: theme}
}

// Offset returns the index of the first visible row
func (l *TrackList) Offset() int {
	return l.offset
}

// Visible returns how many rows fit in a panel of the given height
func Visible(height int) int {
	// title + blank line
	n := height - 2
	if n < 1 {
		n = 1
	}
	return n
}

// Render renders the file list panel. Rows are the folders in order, then
// the tracks; cursor indexes that combined list.
func (l *TrackList) Render(folders []string, tracks []core.Track, cursor int, transport core.Transport, width, height int, focused bool) string {
	title := l.theme.PanelTitle(fmt.Sprintf("File List (%d)", len(tracks)), focused)

	var content string
	if len(folders)+len(tracks) == 0 {
		content = l.theme.Subtitle.Render("No playable files in this directory")
	} else {
		content = l.renderRows(folders, tracks, cursor, transport, width-4, Visible(height))
	}

	panel := l.theme.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (l *TrackList) renderRows(folders []string, tracks []core.Track, cursor int, transport core.Transport, width, rows int) string {
	total := len(folders) + len(tracks)
	l.scrollTo(cursor, rows, total)

	end := l.offset + rows
	if end > total {
		end = total
	}

	numWidth := len(fmt.Sprint(len(tracks)))
	// number + ". " + marker + " "
	overhead := numWidth + 4

	lines := make([]string, 0, end-l.offset)
	for row := l.offset; row < end; row++ {
		if row < len(folders) {
			lines = append(lines, l.renderFolder(folders[row], row == cursor, numWidth, width-overhead, width))
			continue
		}

		i := row - len(folders)
		track := tracks[i]

		marker := " "
		if transport.Active() && transport.TrackID == i {
			marker = "▶"
			if transport.State == core.Paused {
				marker = "⏸"
			}
		}

		num := fmt.Sprintf("%*d.", numWidth, i+1)
		name := truncate(track.Name, width-overhead)

		var line string
		switch {
		case row == cursor:
			text := fmt.Sprintf("%s %s %s", num, marker, name)
			line = l.theme.Selected.Width(width).Render(text)
		case marker != " ":
			line = l.theme.Playing.Render(fmt.Sprintf("%s %s %s", num, marker, name))
		default:
			line = fmt.Sprintf("%s %s %s", l.theme.Dim.Render(num), marker, name)
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (l *TrackList) renderFolder(name string, selected bool, numWidth, nameWidth, width int) string {
	row := fmt.Sprintf("%*s ▸ %s", numWidth+1, "", truncate(name+"/", nameWidth))
	if selected {
		return l.theme.Selected.Width(width).Render(row)
	}
	return l.theme.Label.Render(row)
}

// scrollTo moves the window the least amount needed to show selection.
func (l *TrackList) scrollTo(selection, rows, total int) {
	if selection < l.offset {
		l.offset = selection
	}
	if selection >= l.offset+rows {
		l.offset = selection - rows + 1
	}
	if last := total - rows; l.offset > last {
		l.offset = last
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
