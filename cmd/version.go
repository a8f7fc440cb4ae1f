package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tokentrail %s (commit %s, built %s, %s)\n", Version, GitCommit, BuildTime, runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
