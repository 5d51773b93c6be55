package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hupe1980/umapsgd"
)

const appName = "umapsgd"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var version = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
}

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer
}

// New creates a CLI that logs to w and prints command output to out.
func New(w, out io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    out,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "UMAP layout optimization with parallel SGD",
		Long:         `umapsgd optimizes low-dimensional layouts of weighted graphs with the UMAP stochastic gradient descent schedule.`,
		Version:      version,
		SilenceUsage: true,
	}

	root.AddCommand(c.embedCommand())
	root.AddCommand(c.transformCommand())
	root.AddCommand(c.checkpointCommand())
	root.AddCommand(c.fitABCommand())

	return root
}

// slogger adapts the CLI logger for the optimizer.
func (c *CLI) slogger() *umapsgd.Logger {
	return umapsgd.NewLogger(c.Logger)
}
