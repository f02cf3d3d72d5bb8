// Package cmd implements the CLI commands for seopatch using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "seopatch",
	Short: "seopatch — audit a page and patch its SEO defects in place",
	Long: `seopatch fetches a page, runs it through an SEO audit service, locates
each failing audit in the original source by line number, rewrites the
offending HTML through a text model, and applies the fixes back into the
document without disturbing any other byte.

Usage:
  seopatch optimize <url> [flags]
  seopatch analyze <url> [flags]`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds the process logger honoring --verbose.
func newLogger() hclog.Logger {
	level := hclog.Info
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:  "seopatch",
		Level: level,
	})
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
