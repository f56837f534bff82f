package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/joyshmitz/flyward/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List minted deploy tokens",
	Long: `Shows the audit log of deploy tokens minted by flyward. Only token
names and metadata are recorded; the token values themselves are never
stored.

Examples:
  flyward history            # Last 20 tokens
  flyward history -n 50      # Last 50
  flyward history --secrets  # Secret sync runs instead`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "maximum number of entries to show")
	historyCmd.Flags().Bool("secrets", false, "show secret sync runs instead of tokens")
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	showSecrets, _ := cmd.Flags().GetBool("secrets")

	d, err := db.Open()
	if err != nil {
		return err
	}
	defer d.Close()

	if showSecrets {
		records, err := d.ListSecretSyncs(limit)
		if err != nil {
			return fmt.Errorf("get secret syncs: %w", err)
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No secret syncs recorded.")
			return nil
		}
		return renderSecretSyncs(cmd.OutOrStdout(), records)
	}

	records, err := d.ListTokens(limit)
	if err != nil {
		return fmt.Errorf("get tokens: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tokens recorded.")
		return nil
	}
	return renderTokenList(cmd.OutOrStdout(), records)
}

func renderTokenList(w io.Writer, records []db.TokenRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CREATED\tNAME\tAPP\tIDENTITY\tCOPIED")
	for _, rec := range records {
		copied := rec.CopiedVia
		if copied == "" {
			copied = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			rec.Name,
			orDash(rec.App),
			orDash(rec.Identity),
			copied,
		)
	}
	return tw.Flush()
}

func renderSecretSyncs(w io.Writer, records []db.SecretSyncRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CREATED\tAPP\tKEYS")
	for _, rec := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			orDash(rec.App),
			strings.Join(rec.Keys, ","),
		)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
