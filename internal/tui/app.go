package tui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tomgineer/empitrio/internal/catalog"
	"github.com/tomgineer/empitrio/internal/core"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
	"github.com/tomgineer/empitrio/internal/session"
	"github.com/tomgineer/empitrio/internal/tui/components"
	"github.com/tomgineer/empitrio/internal/tui/styles"
)

// noticeTTL is how long a status line notice stays visible.
const noticeTTL = 5 * time.Second

// Loader scans dir into a catalog.
type Loader func(dir string) (*catalog.Catalog, error)

// FolderLister returns the subdirectory names of dir.
type FolderLister func(dir string) ([]string, error)

// Options configures the TUI.
type Options struct {
	Engine          core.Engine
	Session         session.Options
	Load            Loader
	// Folders lists subdirectories for navigation. Defaults to
	// catalog.Folders when Load is set.
	Folders         FolderLister
	VolumeStep      float64
	RefreshInterval time.Duration
	Theme           string
	Logger          *slog.Logger

	// Clipboard writes text to the system clipboard. Defaults to
	// clipboard.WriteAll.
	Clipboard func(string) error
}

// Model is the main TUI model
type Model struct {
	opts   Options
	keys   KeyMap
	help   help.Model
	theme  styles.Theme
	logger *slog.Logger
	now    func() time.Time

	catalog *catalog.Catalog
	tracks  []core.Track
	session *session.Session

	// folders are the rows above the tracks; folderRow is the cursor
	// among them, or -1 when the cursor is on the session's selection.
	folders   []string
	folderRow int

	width  int
	height int

	// Components
	trackList   *components.TrackList
	nowPlaying  *components.NowPlaying
	historyView *components.History

	// Overlays
	showHelp bool

	// Status line
	notice       string
	noticeIsErr  bool
	noticeExpiry time.Time

	reloading bool
	quitting  bool
}

// NewModel creates a new TUI model playing from cat
func NewModel(cat *catalog.Catalog, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Session.Logger == nil {
		opts.Session.Logger = opts.Logger
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 250 * time.Millisecond
	}
	if opts.VolumeStep <= 0 {
		opts.VolumeStep = 0.05
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Load != nil && opts.Folders == nil {
		opts.Folders = catalog.Folders
	}
	now := opts.Session.Now
	if now == nil {
		now = time.Now
	}

	theme := styles.NewTheme(opts.Theme)
	h := help.New()
	h.Styles.ShortKey = theme.Highlight
	h.Styles.ShortDesc = theme.Subtitle
	h.Styles.ShortSeparator = theme.Dim
	h.Styles.FullKey = theme.Highlight
	h.Styles.FullDesc = theme.Subtitle
	h.Styles.FullSeparator = theme.Dim

	m := Model{
		opts:        opts,
		keys:        DefaultKeyMap(),
		help:        h,
		theme:       theme,
		logger:      opts.Logger,
		now:         now,
		trackList:   components.NewTrackList(theme),
		nowPlaying:  components.NewNowPlaying(theme),
		historyView: components.NewHistory(theme),
	}
	var names []string
	if opts.Folders != nil {
		var err error
		if names, err = opts.Folders(cat.Dir()); err != nil {
			m.logger.Warn("list folders", "dir", cat.Dir(), "error", err)
		}
	}
	m.attach(cat, names)
	return m
}

// attach starts a fresh session on cat. folders are the subdirectory names
// offered for navigation.
func (m *Model) attach(cat *catalog.Catalog, folders []string) {
	m.catalog = cat
	m.tracks = cat.Tracks()
	m.session = session.New(cat, m.opts.Engine, m.opts.Session)

	m.folders = nil
	if m.opts.Load != nil {
		if dir := cat.Dir(); filepath.Dir(dir) != dir {
			m.folders = append(m.folders, components.ParentFolder)
		}
		m.folders = append(m.folders, folders...)
	}
	m.folderRow = -1
	if cat.IsEmpty() && len(m.folders) > 0 {
		m.folderRow = len(m.folders) - len(folders)
		if m.folderRow == len(m.folders) {
			m.folderRow = 0
		}
	}

	if cat.IsEmpty() {
		m.setNotice("", fmt.Errorf("%w in %s", apperrors.ErrEmptyCatalog, cat.Dir()))
	}
}

// Session returns the active playback session.
func (m Model) Session() *session.Session {
	return m.session
}

// Messages
type tickMsg time.Time

// navKind says why a catalog is being loaded.
type navKind int

const (
	navReload navKind = iota
	navEnter
	navUp
)

type reloadMsg struct {
	catalog   *catalog.Catalog
	folders   []string
	folderErr error
	err       error
	nav       navKind
	// from is the directory shown when the load started.
	from string
}

type noticeMsg struct {
	text string
	err  error
}

// Commands
func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) load(dir string, nav navKind) tea.Cmd {
	load, list := m.opts.Load, m.opts.Folders
	from := m.catalog.Dir()
	return func() tea.Msg {
		msg := reloadMsg{nav: nav, from: from}
		msg.catalog, msg.err = load(dir)
		if msg.err == nil && list != nil {
			msg.folders, msg.folderErr = list(dir)
		}
		return msg
	}
}

func (m Model) copyPath(path string) tea.Cmd {
	write := m.opts.Clipboard
	return func() tea.Msg {
		if err := write(path); err != nil {
			return noticeMsg{err: fmt.Errorf("copy to clipboard: %w", err)}
		}
		return noticeMsg{text: "Copied " + filepath.Base(path)}
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.session.Tick()
		m.takeNotice()
		m.expireNotice()
		return m, m.tick()

	case reloadMsg:
		m.reloading = false
		m.applyReload(msg)
		return m, nil

	case noticeMsg:
		m.setNotice(msg.text, msg.err)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys (always work)
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	// Help overlay
	if m.showHelp {
		switch msg.String() {
		case "?", "esc":
			m.showHelp = false
		case "q":
			return m.quit()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.opts.Load == nil || m.reloading {
			return m, nil
		}
		m.setNotice("Reloading...", nil)
		return m.navigate(m.catalog.Dir(), navReload)

	case key.Matches(msg, m.keys.Back):
		return m.openParent()

	case key.Matches(msg, m.keys.Copy):
		if m.folderRow >= 0 {
			return m, m.copyPath(m.folderPath(m.folders[m.folderRow]))
		}
		track, ok := m.catalog.Track(m.session.Selection())
		if !ok {
			return m, nil
		}
		return m, m.copyPath(track.Path)
	}

	cmd, ok := commandForKey(m.keys, msg, m.pageSize(), m.opts.VolumeStep)
	if !ok {
		return m, nil
	}
	if len(m.folders) > 0 {
		switch c := cmd.(type) {
		case session.MoveSelection:
			m.moveCursor(c.Delta)
			return m, nil
		case session.Activate:
			if m.folderRow >= 0 {
				return m.openFolder(m.folders[m.folderRow])
			}
		}
	}
	if m.session.Dispatch(cmd) {
		m.logger.Debug("command", "cmd", fmt.Sprintf("%T", cmd), "transport", m.session.Transport().String())
	}
	m.takeNotice()
	return m, nil
}

// moveCursor moves across the folder rows and the tracks as one list. While
// the cursor is on a folder the session keeps its first track selected.
func (m *Model) moveCursor(delta int) {
	n := len(m.folders)
	tracks := m.catalog.Len()

	pos := m.folderRow
	if pos < 0 {
		pos = n + m.session.Selection()
	}
	target := min(max(pos+delta, 0), n+tracks-1)
	if target < n {
		m.folderRow = target
		target = n
	} else {
		m.folderRow = -1
	}

	if tracks == 0 {
		return
	}
	if d := target - n - m.session.Selection(); d != 0 {
		m.session.Dispatch(session.MoveSelection{Delta: d})
	}
}

// cursor is the highlighted row of the file list.
func (m Model) cursor() int {
	if m.folderRow >= 0 {
		return m.folderRow
	}
	return len(m.folders) + m.session.Selection()
}

func (m Model) folderPath(name string) string {
	if name == components.ParentFolder {
		return filepath.Dir(m.catalog.Dir())
	}
	return filepath.Join(m.catalog.Dir(), name)
}

func (m Model) openFolder(name string) (tea.Model, tea.Cmd) {
	if name == components.ParentFolder {
		return m.openParent()
	}
	return m.navigate(m.folderPath(name), navEnter)
}

func (m Model) openParent() (tea.Model, tea.Cmd) {
	if m.opts.Load == nil {
		return m, nil
	}
	dir := m.catalog.Dir()
	if filepath.Dir(dir) == dir {
		m.setNotice("Already at root directory", nil)
		return m, nil
	}
	return m.navigate(filepath.Dir(dir), navUp)
}

// navigate loads dir in the background. Playback continues until the new
// catalog arrives.
func (m Model) navigate(dir string, nav navKind) (tea.Model, tea.Cmd) {
	if m.opts.Load == nil || m.reloading {
		return m, nil
	}
	m.reloading = true
	return m, m.load(dir, nav)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.session.Close()
	return m, tea.Quit
}

// applyReload swaps in a freshly scanned catalog, either the same directory
// or one reached by folder navigation. The old session is closed first so
// its stream never overlaps the new one; the volume carries over. A failed
// scan keeps everything as it was.
func (m *Model) applyReload(msg reloadMsg) {
	if msg.err != nil {
		m.logger.Warn("load failed", "error", msg.err)
		if msg.nav == navReload {
			m.setNotice("Reload failed", msg.err)
		} else {
			m.setNotice("Open folder failed", msg.err)
		}
		return
	}
	if msg.folderErr != nil {
		m.logger.Warn("list folders", "dir", msg.catalog.Dir(), "error", msg.folderErr)
	}

	before, errBefore := m.catalog.Fingerprint()
	after, errAfter := msg.catalog.Fingerprint()

	m.session.Close()
	m.opts.Session.Volume = m.session.Volume()
	m.attach(msg.catalog, msg.folders)

	n := msg.catalog.Len()
	switch {
	case msg.nav == navEnter:
		m.setNotice(fmt.Sprintf("Entered %s: %d tracks", filepath.Base(msg.catalog.Dir()), n), nil)
	case msg.nav == navUp:
		m.setNotice(fmt.Sprintf("Moved up to %s: %d tracks", msg.catalog.Dir(), n), nil)
		for i, name := range m.folders {
			if name == filepath.Base(msg.from) {
				m.folderRow = i
				break
			}
		}
	case errBefore == nil && errAfter == nil && before == after:
		m.setNotice(fmt.Sprintf("Reloaded: no changes (%d tracks)", n), nil)
	default:
		m.setNotice(fmt.Sprintf("Reloaded: %d tracks", n), nil)
	}
	m.logger.Info("catalog loaded", "dir", msg.catalog.Dir(), "tracks", n)
}

// takeNotice moves a pending session notice to the status line.
func (m *Model) takeNotice() {
	n, ok := m.session.TakeNotice()
	if !ok {
		return
	}
	m.setNotice(n.Message, n.Err)
}

func (m *Model) setNotice(text string, err error) {
	switch {
	case err != nil && text != "":
		text = text + ": " + err.Error()
	case err != nil:
		text = err.Error()
	}
	m.notice = text
	m.noticeIsErr = err != nil
	m.noticeExpiry = m.now().Add(noticeTTL)
}

func (m *Model) expireNotice() {
	if m.notice != "" && m.now().After(m.noticeExpiry) {
		m.notice = ""
		m.noticeIsErr = false
	}
}

// layout returns the column widths and the body height.
func (m Model) layout() (left, right, body int) {
	left = m.width * 60 / 100
	right = m.width - left
	// header + status bar
	body = m.height - 2
	return left, right, body
}

// pageSize is the number of rows PgUp/PgDn move by.
func (m Model) pageSize() int {
	_, _, body := m.layout()
	return components.Visible(body - 2)
}

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	left, right, body := m.layout()
	topHeight := 12
	if topHeight > body-4 {
		topHeight = body / 2
	}
	bottomHeight := body - topHeight

	snap := m.session.Snapshot()

	// Render panels
	trackList := m.trackList.Render(m.folders, m.tracks, m.cursor(), snap.Transport, left-2, body-2, true)
	nowPlaying := m.nowPlaying.Render(snap, right-2, topHeight-2, false)
	historyView := m.historyView.Render(m.session.History(), m.tracks, right-2, bottomHeight-2, false)

	rightCol := lipgloss.JoinVertical(lipgloss.Left, nowPlaying, historyView)
	main := lipgloss.JoinHorizontal(lipgloss.Top, trackList, rightCol)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), main, m.renderStatusBar())
}

func (m Model) renderHeader() string {
	title := m.theme.Header.Render(" e m p i t r i o")
	dir := m.theme.Dim.Render("  " + m.catalog.Dir())
	return lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(title + dir)
}

func (m Model) renderStatusBar() string {
	status := m.help.ShortHelpView(m.keys.ShortHelp())

	if m.notice != "" {
		if m.noticeIsErr {
			status = m.theme.Error.Render(m.notice)
		} else {
			status = m.theme.Info.Render(m.notice)
		}
	}

	return lipgloss.NewStyle().
		Width(m.width).
		MaxHeight(1).
		Padding(0, 1).
		Render(status)
}

func (m Model) renderHelp() string {
	title := m.theme.Header.Render("empitrio - Keyboard Shortcuts")

	h := m.help
	h.ShowAll = true
	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		h.View(m.keys),
		"",
		m.theme.Dim.Render("Press ? or Esc to close"),
	)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(m.theme.FocusedBorder.Padding(1, 2).Render(content))
}

// Run starts the TUI application and blocks until the user quits.
func Run(cat *catalog.Catalog, opts Options) error {
	model := NewModel(cat, opts)
	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.session.Close()
	} else {
		model.session.Close()
	}
	return err
}
