package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bodhi/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "bodhi",
	Short:   "Run GenerativeAI LLMs locally and serve them via OpenAI compatible API",
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(appCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(pullCmd())
	rootCmd.AddCommand(createCmd())
	rootCmd.AddCommand(runCmd())
}

// Execute runs the root cobra command, exiting nonzero on any command
// or flag-validation error (spec.md scenarios S5, S6).
func Execute() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
