package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersionInfo()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersionInfo prints a machine-parseable version string to stdout.
func printVersionInfo() {
	fmt.Printf("pgsession %s (%s, %s) %s/%s\n", version, commit, date, runtime.GOOS, runtime.GOARCH)
}
