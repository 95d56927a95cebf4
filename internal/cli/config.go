package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/tomgineer/empitrio/internal/config"
	apperrors "github.com/tomgineer/empitrio/internal/errors"
)

const configHeader = "# empitrio configuration\n# https://github.com/tomgineer/empitrio\n\n"

var configInteractive bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Commands for viewing and editing empitrio configuration.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration: file values, defaults and EMPITRIO_* overrides.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long:  `Open the configuration file in your default editor.`,
	RunE:  runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a new configuration file with default values.

With --interactive a short form asks for the music directory, theme,
volume and auto-advance before writing.`,
	RunE: runConfigInit,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value.

Supported keys:
  library.dir               Directory to play when none is given
  library.extensions        Comma-separated list, e.g. .mp3,.flac
  library.read_tags         Read title/artist/album tags (true/false)
  playback.volume           Initial volume (0-100)
  playback.volume_step      Volume change per key press (1-100)
  playback.auto_advance     Play the next track when one ends (true/false)
  tui.theme                 auto, xcad, latte, frappe, macchiato, mocha
  tui.refresh_interval      Redraw interval in milliseconds
  log.level                 debug, info, warn, error
  log.file                  Log file path (empty disables logging)

Examples:
  empitrio config set library.dir ~/Music
  empitrio config set tui.theme mocha`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInteractive, "interactive", "i", false, "ask for values before writing")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// configKinds maps settable keys to their value kind.
var configKinds = map[string]string{
	"library.dir":           "string",
	"library.extensions":    "list",
	"library.read_tags":     "bool",
	"playback.volume":       "int",
	"playback.volume_step":  "int",
	"playback.auto_advance": "bool",
	"tui.theme":             "string",
	"tui.refresh_interval":  "int",
	"log.level":             "string",
	"log.file":              "string",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if JSONOutput() {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	// Pretty print as TOML
	encoder := toml.NewEncoder(out)
	encoder.Indent = "  "
	return encoder.Encode(cfg)
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return apperrors.WithSuggestion(
			fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, configPath),
			"Run 'empitrio config init' first")
	}

	// Find editor
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		for _, e := range []string{"nano", "vim", "vi", "notepad"} {
			if _, err := exec.LookPath(e); err == nil {
				editor = e
				break
			}
		}
	}
	if editor == "" {
		return fmt.Errorf("no editor found. Set EDITOR environment variable")
	}

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	return editorCmd.Run()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists at %s", configPath)
	}

	newCfg := config.Default()
	if configInteractive {
		if err := promptConfig(newCfg); err != nil {
			return err
		}
	}

	if err := writeConfigFile(configPath, newCfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return json.NewEncoder(out).Encode(map[string]string{
			"status": "created",
			"path":   configPath,
		})
	}

	_, _ = fmt.Fprintf(out, "Created config file: %s\n", configPath)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Set your music directory: empitrio config set library.dir ~/Music")
	_, _ = fmt.Fprintln(out, "  2. Run 'empitrio' to start playing")
	return nil
}

// promptConfig asks for the common settings and stores the answers in c.
func promptConfig(c *config.Config) error {
	volume := strconv.Itoa(c.Playback.Volume)
	autoAdvance := c.Playback.AutoAdvanceEnabled()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Music directory").
				Description("Leave empty to play the working directory").
				Value(&c.Library.Dir),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(config.Themes...)...).
				Value(&c.TUI.Theme),
			huh.NewInput().
				Title("Volume").
				Description("1-100 (start muted with --volume 0)").
				Value(&volume).
				Validate(func(s string) error {
					v, err := strconv.Atoi(s)
					if err != nil || v < 1 || v > 100 {
						return errors.New("enter a number between 1 and 100")
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Play the next track when one ends?").
				Value(&autoAdvance),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	c.Playback.Volume, _ = strconv.Atoi(volume)
	c.Playback.AutoAdvance = &autoAdvance
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := getConfigPath()
	out := cmd.OutOrStdout()

	if JSONOutput() {
		_, err := os.Stat(path)
		return json.NewEncoder(out).Encode(map[string]any{
			"path":   path,
			"exists": err == nil,
		})
	}

	_, _ = fmt.Fprintln(out, path)
	return nil
}

// getConfigPath returns the file config commands read and write: --config,
// then the first existing file in the search path, then ~/.empitriorc.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := config.FindFile(); p != "" {
		return p
	}
	return config.DefaultPath()
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	configPath := getConfigPath()

	if err := setConfigValue(configPath, key, value); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return json.NewEncoder(out).Encode(map[string]string{
			"status": "updated",
			"key":    key,
			"value":  value,
		})
	}
	_, _ = fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

// setConfigValue rewrites one key of the TOML file at path. The result is
// validated before anything is written.
func setConfigValue(path, key, value string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return apperrors.WithSuggestion(
			fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, path),
			"Run 'empitrio config init' first")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	rawConfig := make(map[string]any)
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidConfig, path, err)
	}

	// Parse the key (e.g., "tui.theme" -> ["tui", "theme"])
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format. Use 'section.key' (e.g., tui.theme)")
	}
	section, field := parts[0], parts[1]

	typedValue, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	if hint, ok := zeroIsDefault[key]; ok && typedValue == 0 {
		return apperrors.WithSuggestion(
			fmt.Errorf("%w: %s = 0 is read back as the default", apperrors.ErrInvalidConfig, key),
			hint)
	}

	sectionMap, ok := rawConfig[section].(map[string]any)
	if !ok {
		sectionMap = make(map[string]any)
		rawConfig[section] = sectionMap
	}
	sectionMap[field] = typedValue

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(rawConfig); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	check := &config.Config{}
	if _, err := toml.Decode(buf.String(), check); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidConfig, err)
	}
	check.ApplyDefaults()
	if err := check.Validate(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	return os.WriteFile(path, append([]byte(configHeader), buf.Bytes()...), 0o644)
}

// zeroIsDefault lists the int keys that ApplyDefaults fills when they are 0,
// with the hint shown when someone tries to set one to 0.
var zeroIsDefault = map[string]string{
	"playback.volume":      "Use 1-100 here; start muted with 'empitrio --volume 0' or lower the volume with '-'",
	"playback.volume_step": "Use a step from 1 to 100",
	"tui.refresh_interval": "Use an interval in milliseconds greater than 0",
}

// parseConfigValue converts value to the type key is stored as.
func parseConfigValue(key, value string) (any, error) {
	kind, ok := configKinds[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}

	switch kind {
	case "int":
		i, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("value must be an integer for %s", key)
		}
		return i, nil
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("value must be true or false for %s", key)
		}
		return b, nil
	case "list":
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil
	}
	return value, nil
}

// writeConfigFile encodes c as TOML at path, creating parent directories.
func writeConfigFile(path string, c *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(configHeader)
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = "  "
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
