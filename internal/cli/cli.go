// Package cli implements the mandel command-line interface.
//
// The CLI is built with cobra. Library logging is routed through a
// charmbracelet/log logger installed as the slog handler of the mandel
// package, so pass lifecycle messages appear alongside CLI output.
//
// # Commands
//
//   - render: one pass written to PNG under its deterministic identifier
//   - bench: repeated passes with timing statistics
//   - explore: interactive terminal explorer
//   - version: build information
//
// # Configuration
//
// Every command reads an optional --config file (.yaml, .yml or .toml).
// Flags given on the command line override file values.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/mandel"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "mandel"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	logOut io.Writer
}

// New creates a new CLI instance and routes library logging to it.
func New(w io.Writer, level log.Level) *CLI {
	l := newLogger(w, level)
	mandel.SetLogger(slog.New(l))
	return &CLI{Logger: l, logOut: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Mandel renders the Mandelbrot set on every CPU core",
		Long:         `Mandel is a work-stealing, lane-batched escape-time renderer for the Mandelbrot set with supersampling and three coloring modes.`,
		Version:      mandel.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(versionTemplate())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.benchCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.versionCommand())

	return root
}
