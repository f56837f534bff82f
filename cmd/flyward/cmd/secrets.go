package cmd

import (
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joyshmitz/flyward/internal/db"
	"github.com/joyshmitz/flyward/internal/envfile"
	"github.com/joyshmitz/flyward/internal/watch"
)

// secretsCmd is the parent command for app secret management.
var secretsCmd = &cobra.Command{
	Use:   "secrets",
	Short: "Manage app secrets from a local .env file",
}

var secretsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push .env values to the app via flyctl",
	Long: `Reads a dotenv file and sets its values as Fly.io app secrets with
'flyctl secrets set'. When the config lists secret keys, only those are
synced; otherwise every entry in the file is.

With --watch, flyward stays running and re-syncs whenever the file
changes.

Examples:
  flyward secrets sync
  flyward secrets sync --app skycast --env-file .env.production
  flyward secrets sync --watch`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _ := cmd.Flags().GetString("app")
		if app == "" {
			app = cfg.App
		}
		envFile, _ := cmd.Flags().GetString("env-file")
		if envFile == "" {
			envFile = cfg.Secrets.EnvFile
		}

		if err := syncSecrets(cmd, app, envFile); err != nil {
			return err
		}

		watchFile, _ := cmd.Flags().GetBool("watch")
		if !watchFile {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		w, err := watch.New(watch.Config{
			Path: envFile,
			OnChange: func(path string) {
				if err := syncSecrets(cmd, app, path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "sync failed: %v\n", err)
				}
			},
		})
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer w.Stop()

		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes (ctrl-c to stop)\n", envFile)
		<-ctx.Done()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(secretsCmd)
	secretsCmd.AddCommand(secretsSyncCmd)
	secretsSyncCmd.Flags().String("app", "", "Fly.io app to set secrets on")
	secretsSyncCmd.Flags().String("env-file", "", "dotenv file to read (default from config, then .env)")
	secretsSyncCmd.Flags().Bool("watch", false, "re-sync whenever the env file changes")
}

func syncSecrets(cmd *cobra.Command, app, envFile string) error {
	vars, err := envfile.Load(envFile)
	if err != nil {
		return err
	}

	secrets := filterSecrets(vars, cfg.Secrets.Keys)
	if len(secrets) == 0 {
		return fmt.Errorf("no matching secrets in %s", envFile)
	}

	if err := client.SetSecrets(cmd.Context(), app, secrets); err != nil {
		return fmt.Errorf("set secrets: %w", err)
	}

	keys := make([]string, 0, len(secrets))
	for k := range secrets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if d := openHistory(cmd); d != nil {
		if _, err := d.RecordSecretSync(db.SecretSyncRecord{App: app, Keys: keys}); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: could not record sync in history: %v\n", err)
		}
		d.Close()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d secret(s) to %s: %v\n", len(keys), appLabel(app), keys)
	return nil
}

// filterSecrets keeps only the configured keys; an empty filter keeps all.
func filterSecrets(vars map[string]string, keys []string) map[string]string {
	if len(keys) == 0 {
		return vars
	}
	filtered := make(map[string]string)
	for _, k := range keys {
		if v, ok := vars[k]; ok {
			filtered[k] = v
		}
	}
	return filtered
}

func appLabel(app string) string {
	if app == "" {
		return "the app from fly.toml"
	}
	return app
}
