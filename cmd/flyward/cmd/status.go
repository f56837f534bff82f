package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd shows the app's deployment status via flyctl.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the app's deployment status",
	Long: `Runs 'flyctl status' for the configured app and prints the output.

Examples:
  flyward status
  flyward status --app skycast`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _ := cmd.Flags().GetString("app")
		if app == "" {
			app = cfg.App
		}

		out, err := client.Status(cmd.Context(), app)
		if err != nil {
			return fmt.Errorf("get status: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("app", "", "Fly.io app to query")
}
