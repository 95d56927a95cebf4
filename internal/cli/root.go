package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tomgineer/empitrio/internal/audio"
	"github.com/tomgineer/empitrio/internal/catalog"
	"github.com/tomgineer/empitrio/internal/config"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
	"github.com/tomgineer/empitrio/internal/logging"
	"github.com/tomgineer/empitrio/internal/session"
	"github.com/tomgineer/empitrio/internal/tui"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	playRefresh int
	playTheme   string
	playVolume  int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "empitrio [dir]",
	Short: "Play the audio files in a directory from the terminal",
	Long: `empitrio lists the playable audio files in a directory and plays them
through the default output device.

Keyboard shortcuts:
  ↑/↓, j/k      Move selection
  PgUp/PgDn     Move by a page
  g/G           First/last track
  Enter         Play selected (again to pause) or open folder
  Backspace, h  Parent folder
  Space, p      Pause/resume
  s             Stop
  +/-           Volume up/down
  r             Reload directory
  y             Copy selected path
  ?             Help
  q, Esc        Quit`,
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE:          runPlayer,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.empitriorc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.Flags().IntVar(&playRefresh, "refresh", 0, "redraw interval in milliseconds (default from config)")
	rootCmd.Flags().StringVar(&playTheme, "theme", "", "color theme: auto, xcad, latte, frappe, macchiato, mocha")
	rootCmd.Flags().IntVar(&playVolume, "volume", 0, "initial volume 0-100 (default from config)")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	if verbose {
		cfg.Log.Level = "debug"
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}

// libraryDir picks the directory to scan: the argument, then library.dir,
// then the working directory.
func libraryDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if cfg != nil && cfg.Library.Dir != "" {
		return cfg.Library.Dir
	}
	return "."
}

func catalogOptions() catalog.Options {
	return catalog.Options{
		Extensions: cfg.Library.Extensions,
		ReadTags:   cfg.Library.TagsEnabled(),
	}
}

// applyPlayerFlags copies explicitly set flags over the loaded config.
func applyPlayerFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if flags.Changed("refresh") {
		cfg.TUI.RefreshInterval = playRefresh
	}
	if flags.Changed("theme") {
		cfg.TUI.Theme = playTheme
	}
	if flags.Changed("volume") {
		cfg.Playback.Volume = playVolume
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}
	return nil
}

func runPlayer(cmd *cobra.Command, args []string) error {
	if err := applyPlayerFlags(cmd); err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	for _, ext := range cfg.Library.Extensions {
		if !audio.Supported("track" + ext) {
			logger.Warn("extension has no decoder; matching files will be skipped on play", "ext", ext)
		}
	}

	dir := libraryDir(args)
	opts := catalogOptions()

	cat, err := catalog.Load(dir, opts)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "dir", cat.Dir(), "tracks", cat.Len())

	engine, err := audio.NewEngine(logger)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	return tui.Run(cat, tui.Options{
		Engine: engine,
		Session: session.Options{
			Volume:      cfg.Playback.Level(),
			AutoAdvance: cfg.Playback.AutoAdvanceEnabled(),
			Logger:      logger,
		},
		Load: func(dir string) (*catalog.Catalog, error) {
			return catalog.Load(dir, opts)
		},
		VolumeStep:      cfg.Playback.Step(),
		RefreshInterval: time.Duration(cfg.TUI.RefreshInterval) * time.Millisecond,
		Theme:           cfg.TUI.Theme,
		Logger:          logger,
	})
}
