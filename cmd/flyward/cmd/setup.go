package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joyshmitz/flyward/internal/db"
	"github.com/joyshmitz/flyward/internal/setup"
)

// setupCmd runs the deploy setup flow non-interactively.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Mint a deploy token and print GitHub Actions setup steps",
	Long: `Checks that flyctl is installed and authenticated, mints a deploy
token named after today's date, copies it to the clipboard when a
clipboard utility is available, and prints the steps to store it as the
FLY_API_TOKEN repository secret.

Examples:
  flyward setup
  flyward setup --app skycast
  flyward setup --name my-token --expiry 720h
  flyward setup --no-clipboard`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := optionsFromConfig()

		if app, _ := cmd.Flags().GetString("app"); app != "" {
			opts.App = app
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			opts.TokenName = name
		}
		if expiry, _ := cmd.Flags().GetDuration("expiry"); expiry > 0 {
			opts.Expiry = expiry
		}
		if noClip, _ := cmd.Flags().GetBool("no-clipboard"); noClip {
			opts.SkipClipboard = true
		}

		d := openHistory(cmd)
		defer d.Close()

		_, err := setup.Run(cmd.Context(), client, copier, recorderFor(d), cmd.OutOrStdout(), opts)
		return err
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().String("app", "", "Fly.io app to scope the token to")
	setupCmd.Flags().String("name", "", "token name (default: date-derived)")
	setupCmd.Flags().Duration("expiry", 0, "token lifetime (default: flyctl's)")
	setupCmd.Flags().Bool("no-clipboard", false, "skip the clipboard step")
}

// optionsFromConfig translates the loaded config into setup options.
func optionsFromConfig() setup.Options {
	return setup.Options{
		App:         cfg.App,
		TokenPrefix: cfg.Token.NamePrefix,
		Expiry:      cfg.Token.Expiry.Duration(),
		Color:       isTerminal(),
		Now:         time.Now,
	}
}

// openHistory opens the audit database. A nil return is usable: the
// history is best-effort and Close on a nil DB is a no-op.
func openHistory(cmd *cobra.Command) *db.DB {
	d, err := db.Open()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: token history unavailable: %v\n", err)
		return nil
	}
	return d
}

// recorderFor avoids handing setup a non-nil interface wrapping a nil DB.
func recorderFor(d *db.DB) setup.Recorder {
	if d == nil {
		return nil
	}
	return d
}
