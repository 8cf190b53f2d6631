// Package cli implements the roster command-line interface using
// Cobra. Each subcommand operates on a daemon.Daemon built fresh for
// that invocation — there is no long-lived client process, only the
// on-disk SQLite store the daemon opens.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roster",
	Short: "roster — assignment and learning engine for task routing",
	Long: `roster assigns tasks to employees using a skill-similarity
filter and a contextual bandit, then learns from completion outcomes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
