// Package cli implements the pairsort command-line interface.
//
// The commands are:
//   - serve: run the HTTP API
//   - sort:  order the pairs in a JSON file or stdin
//   - audit: check every DAG stored in the configured database for cycles
//
// All commands accept --config and --verbose (-v).
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/edkuperman/pairsort/internal/config"
)

// ErrCycle is returned by commands whose input could not be ordered.
// The diagnostic has already been printed when it is returned.
var ErrCycle = errors.New("cycle detected")

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersion sets the build information shown by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
}

// New creates a CLI that logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pairsort",
		Short:         "pairsort orders items from pairwise precedence constraints",
		Long:          `pairsort takes "from precedes to" pairs and returns a topological order, or names the edge most likely to break when the pairs form a cycle.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("pairsort %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVar(&c.configPath, "config", "pairsort.yaml", "config file (missing file means defaults)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sortCommand())
	root.AddCommand(c.auditCommand())

	return root
}

// loadConfig reads the config file and applies its log level unless
// --verbose already forced debug output.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if !c.verbose {
		c.SetLogLevel(cfg.LogLevel())
	}
	return cfg, nil
}
