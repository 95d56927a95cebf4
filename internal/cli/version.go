package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if JSONOutput() {
			info := map[string]string{
				"version":    Version,
				"commit":     Commit,
				"build_date": BuildDate,
				"go_version": runtime.Version(),
				"os":         runtime.GOOS,
				"arch":       runtime.GOARCH,
			}
			b, _ := json.MarshalIndent(info, "", "  ")
			_, _ = fmt.Fprintln(out, string(b))
			return
		}

		_, _ = fmt.Fprintf(out, "empitrio %s\n", Version)
		if Verbose() {
			_, _ = fmt.Fprintf(out, "  commit:     %s\n", Commit)
			_, _ = fmt.Fprintf(out, "  built:      %s\n", BuildDate)
			_, _ = fmt.Fprintf(out, "  go version: %s\n", runtime.Version())
			_, _ = fmt.Fprintf(out, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
