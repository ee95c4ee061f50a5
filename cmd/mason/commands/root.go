// Package commands implements the CLI commands for the mason build orchestrator.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/mason/internal/app"
	"go.trai.ch/mason/internal/build"
	"go.trai.ch/mason/internal/core/domain"
)

// CLI represents the command line interface for mason.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Build(ctx context.Context, targetNames []string, opts app.BuildOptions) error
	Show(ctx context.Context, targetNames []string, opts app.ShowOptions, w io.Writer) error
	Clean(ctx context.Context, opts app.CleanOptions) error
	Prune(ctx context.Context, opts app.PruneOptions) (domain.PruneReport, error)
}

// New creates a new CLI instance with the given app. setJSON, if not nil,
// is called with the value of the --json flag before any command runs.
func New(a Application, setJSON func(bool)) *CLI {
	rootCmd := &cobra.Command{
		Use:           "mason",
		Short:         "Build software stacks from declarative elements in isolated sandboxes",
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

	rootCmd.PersistentFlags().Bool("json", false, "Write log messages as JSON")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if setJSON == nil {
			return
		}
		jsonLogs, _ := cmd.Flags().GetBool("json")
		setJSON(jsonLogs)
	}

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newShowCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newCacheCmd())
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
