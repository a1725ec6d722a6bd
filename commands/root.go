// Package commands implements the expensectl command line client.
package commands

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billbatista/expensebook/client"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server  string
	session string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "expensectl",
		Short: "Track expenses against a budget",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.server, "server", cmp.Or(os.Getenv("EXPENSECTL_SERVER"), defaultServer), "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.session, "session", defaultSessionPath(), "session file")

	rootCmd.AddCommand(
		newRegisterCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newShowCommand(opts),
		newAddCommand(opts),
		newDeleteCommand(opts),
		newClearCommand(opts),
		newBudgetCommand(opts),
	)

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context) int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "error:", client.UserMessage(err))
		return 1
	}
	return 0
}

func (o *options) app() *client.App {
	return client.NewApp(client.New(o.server, nil), client.SessionFile{Path: o.session})
}

// load opens the stored session and fetches the account state.
func (o *options) load(ctx context.Context) (*client.App, error) {
	app := o.app()
	if err := app.Load(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "expensectl", "session.yaml")
}
