package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/tomgineer/empitrio/internal/audio"
	"github.com/tomgineer/empitrio/internal/catalog"
	"github.com/tomgineer/empitrio/internal/core"
	"golang.org/x/sync/errgroup"
)

var listDurations bool

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List playable tracks",
	Long: `List the tracks the player would show for a directory, in play order.

The audio device is not opened. With --durations every file is decoded
far enough to read its length.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listDurations, "durations", "d", false, "probe track durations")
	rootCmd.AddCommand(listCmd)
}

// trackJSON is the list --json row.
type trackJSON struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Duration float64 `json:"duration_seconds,omitempty"`
	Title    string  `json:"title,omitempty"`
	Artist   string  `json:"artist,omitempty"`
	Album    string  `json:"album,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Load(libraryDir(args), catalogOptions())
	if err != nil {
		return err
	}

	tracks := cat.Tracks()
	if listDurations && len(tracks) > 0 {
		progress := cmd.ErrOrStderr()
		if JSONOutput() {
			progress = io.Discard
		}
		probeDurations(tracks, audio.Probe, progress)
	}

	return printTracks(cmd.OutOrStdout(), cat.Dir(), tracks, JSONOutput())
}

// probeDurations fills Duration for every track that can be decoded.
// Unplayable files keep a zero duration.
func probeDurations(tracks []core.Track, probe func(string) (time.Duration, error), progress io.Writer) {
	bar := progressbar.NewOptions(
		len(tracks),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetDescription("Probing durations..."),
	)

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i := range tracks {
		g.Go(func() error {
			defer func() { _ = bar.Add(1) }()
			if d, err := probe(tracks[i].Path); err == nil {
				tracks[i].Duration = d
			}
			return nil
		})
	}
	_ = g.Wait()
	_ = bar.Finish()
}

func printTracks(w io.Writer, dir string, tracks []core.Track, asJSON bool) error {
	if asJSON {
		rows := make([]trackJSON, len(tracks))
		for i, t := range tracks {
			rows[i] = trackJSON{
				ID:       t.ID,
				Name:     t.Name,
				Path:     t.Path,
				Size:     t.Size,
				Duration: t.Duration.Seconds(),
				Title:    t.Title,
				Artist:   t.Artist,
				Album:    t.Album,
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(tracks) == 0 {
		_, _ = fmt.Fprintf(w, "No playable tracks in %s\n", dir)
		return nil
	}

	table := NewTableWriter(w, "#", "NAME", "SIZE", "LENGTH", "ARTIST")
	var total uint64
	for _, t := range tracks {
		length := "-"
		if t.HasDuration() {
			length = FormatDuration(int(t.Duration.Seconds()))
		}
		table.Row(
			strconv.Itoa(t.ID+1),
			TruncateString(t.Name, 48),
			humanize.Bytes(uint64(t.Size)),
			length,
			TruncateString(t.Artist, 24),
		)
		total += uint64(t.Size)
	}
	table.Flush()

	_, _ = fmt.Fprintf(w, "\n%d tracks, %s\n", len(tracks), humanize.Bytes(total))
	return nil
}
