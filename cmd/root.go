// Package cmd defines the eduassist command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eduassist/eduassist/internal/log"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "eduassist",
	Short: "Retrieval-augmented teaching assistant service",
	Long: `eduassist serves a streaming chat API for educators, backed by a
pgvector knowledge base and the Gemini API. The assistant searches
ingested teaching materials, analyzes student misconceptions, and
generates learning objectives and curriculum paths grounded in the
retrieved content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the process logger honoring the verbose flag.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: true})
}
