// Package cli implements the Lingvo command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lingvo",
	Short: "Lingvo — Gamified English learning backend",
	Long: `Lingvo is the backend for the Lingvo language-learning app:
courses and lessons, streaks, hearts, XP and coins, study groups,
and the AI tutor.`,
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
