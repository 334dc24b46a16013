// Package commands implements the CLI commands for testarc.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/testarc/internal/app"
	"go.trai.ch/testarc/internal/build"
	"go.trai.ch/testarc/internal/engine/suite"
)

// CLI represents the command line interface for testarc.
type CLI struct {
	app      Application
	rootCmd  *cobra.Command
	jsonHook func(bool)
	json     bool
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, opts app.BuildOptions) ([]app.ArtifactSummary, error)
	Inspect(ctx context.Context, opts app.InspectOptions) ([]suite.Lookup, error)
	List(ctx context.Context, path string) ([]string, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// Option configures a CLI.
type Option func(*CLI)

// WithJSONHook registers a function told whether --json was given before any
// command runs.
func WithJSONHook(fn func(bool)) Option {
	return func(c *CLI) {
		c.jsonHook = fn
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "testarc",
		Short:         "Build throwaway Go artifacts and probe their type model",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentFlags().BoolVar(&c.json, "json", false, "Write reports and logs as JSON")
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if c.jsonHook != nil {
			c.jsonHook(c.json)
		}
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newInspectCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
