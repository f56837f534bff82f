// Package cmd implements the CLI commands for flyward.
//
// flyward prepares a Fly.io app for continuous deployment from GitHub
// Actions: it mints a deploy token with flyctl, walks you through adding
// it as a repository secret, and keeps app secrets in sync with your
// local .env file. All Fly.io interaction is delegated to flyctl; flyward
// never talks to the network itself.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/joyshmitz/flyward/internal/clipboard"
	"github.com/joyshmitz/flyward/internal/config"
	"github.com/joyshmitz/flyward/internal/flyctl"
	"github.com/joyshmitz/flyward/internal/setup"
	"github.com/joyshmitz/flyward/internal/tui"
	"github.com/joyshmitz/flyward/internal/version"
)

var (
	cfg    *config.Config
	client *flyctl.Client
	copier *clipboard.Copier
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "flyward",
	Short: "Fly.io deployment setup assistant",
	Long: `flyward sets up continuous deployment to Fly.io from GitHub Actions.

It wraps flyctl to:
  1. Check that flyctl is installed and you are logged in
  2. Mint a date-named deploy token
  3. Walk you through storing it as the FLY_API_TOKEN repository secret
  4. Keep your app's secrets in sync with a local .env file

Run 'flyward' without arguments to launch the interactive wizard, or
'flyward setup' for the plain non-interactive flow.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		d := openHistory(cmd)
		defer d.Close()

		opts := optionsFromConfig()
		if isTerminal() {
			return tui.Run(cmd.Context(), tui.Config{
				Client:   client,
				Clip:     copier,
				Recorder: recorderFor(d),
				Options:  opts,
			})
		}
		opts.Color = false
		_, err := setup.Run(cmd.Context(), client, copier, recorderFor(d), cmd.OutOrStdout(), opts)
		return err
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		client = flyctl.New()
		copier = clipboard.New()
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.Info())
	},
}
