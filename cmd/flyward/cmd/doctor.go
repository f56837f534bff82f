package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	osexec "os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/joyshmitz/flyward/internal/config"
	"github.com/joyshmitz/flyward/internal/db"
)

// CheckResult represents the result of a single diagnostic check.
type CheckResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "warn", "fail", "fixed"
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// DoctorReport contains all diagnostic check results.
type DoctorReport struct {
	Timestamp  string        `json:"timestamp"`
	OverallOK  bool          `json:"overall_ok"`
	PassCount  int           `json:"pass_count"`
	WarnCount  int           `json:"warn_count"`
	FailCount  int           `json:"fail_count"`
	FixedCount int           `json:"fixed_count"`
	CLITools   []CheckResult `json:"cli_tools"`
	Auth       []CheckResult `json:"auth"`
	Clipboard  []CheckResult `json:"clipboard"`
	Config     []CheckResult `json:"config"`
	DataDir    []CheckResult `json:"data_dir"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose setup issues",
	Long: `Runs diagnostic checks and reports any issues.

Checks performed:
  - flyctl: Is the Fly.io CLI installed and in PATH?
  - Auth: Is a Fly.io session active?
  - Clipboard: Is a supported clipboard utility available?
  - Config: Is the configuration file valid? Is an app configured?
  - Data directory: Does the history database directory exist?

Flags:
  --fix   Attempt to fix issues (create directories)
  --json  Output results in JSON format for scripting`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fix, _ := cmd.Flags().GetBool("fix")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		report := runDoctorChecks(cmd, fix)

		if jsonOutput {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		printDoctorReport(cmd, report)

		if !report.OverallOK {
			return fmt.Errorf("found %d issues (%d warnings, %d failures)",
				report.WarnCount+report.FailCount, report.WarnCount, report.FailCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().Bool("fix", false, "attempt to fix issues")
	doctorCmd.Flags().Bool("json", false, "output in JSON format")
}

func runDoctorChecks(cmd *cobra.Command, fix bool) *DoctorReport {
	report := &DoctorReport{
		Timestamp: time.Now().Format(time.RFC3339),
	}

	report.CLITools = checkCLITool()
	report.Auth = checkAuth(cmd)
	report.Clipboard = checkClipboard()
	report.Config = checkConfig()
	report.DataDir = checkDataDir(fix)

	allChecks := append(report.CLITools, report.Auth...)
	allChecks = append(allChecks, report.Clipboard...)
	allChecks = append(allChecks, report.Config...)
	allChecks = append(allChecks, report.DataDir...)

	for _, check := range allChecks {
		switch check.Status {
		case "pass":
			report.PassCount++
		case "warn":
			report.WarnCount++
		case "fail":
			report.FailCount++
		case "fixed":
			report.FixedCount++
			report.PassCount++
		}
	}

	report.OverallOK = report.FailCount == 0
	return report
}

func checkCLITool() []CheckResult {
	for _, bin := range []string{"flyctl", "fly"} {
		if path, err := osexec.LookPath(bin); err == nil {
			return []CheckResult{{
				Name:    "flyctl",
				Status:  "pass",
				Message: fmt.Sprintf("found at %s", path),
			}}
		}
	}
	return []CheckResult{{
		Name:    "flyctl",
		Status:  "fail",
		Message: "not found in PATH",
		Details: "Install from https://fly.io/docs/flyctl/install/",
	}}
}

func checkAuth(cmd *cobra.Command) []CheckResult {
	if _, err := client.Path(); err != nil {
		return []CheckResult{{
			Name:    "session",
			Status:  "warn",
			Message: "skipped (flyctl not installed)",
		}}
	}

	identity, err := client.Whoami(cmd.Context())
	if err != nil {
		return []CheckResult{{
			Name:    "session",
			Status:  "fail",
			Message: "not logged in",
			Details: "Run 'fly auth login'",
		}}
	}
	return []CheckResult{{
		Name:    "session",
		Status:  "pass",
		Message: fmt.Sprintf("logged in as %s", identity),
	}}
}

func checkClipboard() []CheckResult {
	for _, bin := range []string{"pbcopy", "xclip"} {
		if path, err := osexec.LookPath(bin); err == nil {
			return []CheckResult{{
				Name:    "clipboard",
				Status:  "pass",
				Message: fmt.Sprintf("%s found at %s", bin, path),
			}}
		}
	}
	return []CheckResult{{
		Name:    "clipboard",
		Status:  "warn",
		Message: "no clipboard utility found",
		Details: "Tokens will need to be copied manually (install pbcopy or xclip)",
	}}
}

func checkConfig() []CheckResult {
	var results []CheckResult

	configPath := config.Path()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		results = append(results, CheckResult{
			Name:    "config",
			Status:  "pass",
			Message: "not present (using defaults)",
			Details: "Optional: create " + configPath,
		})
	} else if err != nil {
		results = append(results, CheckResult{
			Name:    "config",
			Status:  "fail",
			Message: "error checking config",
			Details: err.Error(),
		})
	} else if _, err := config.Load(); err != nil {
		results = append(results, CheckResult{
			Name:    "config",
			Status:  "fail",
			Message: "invalid configuration",
			Details: err.Error(),
		})
	} else {
		results = append(results, CheckResult{
			Name:    "config",
			Status:  "pass",
			Message: "valid",
		})
	}

	if cfg != nil && cfg.App == "" {
		results = append(results, CheckResult{
			Name:    "app",
			Status:  "warn",
			Message: "no app configured",
			Details: "flyctl will resolve the app from fly.toml; set 'app' in " + configPath + " to pin it",
		})
	} else if cfg != nil {
		results = append(results, CheckResult{
			Name:    "app",
			Status:  "pass",
			Message: cfg.App,
		})
	}

	return results
}

func checkDataDir(fix bool) []CheckResult {
	dir := filepath.Dir(db.DefaultPath())

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		if fix {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return []CheckResult{{
					Name:    "data directory",
					Status:  "fail",
					Message: "missing and could not create",
					Details: err.Error(),
				}}
			}
			return []CheckResult{{
				Name:    "data directory",
				Status:  "fixed",
				Message: fmt.Sprintf("created %s", dir),
			}}
		}
		return []CheckResult{{
			Name:    "data directory",
			Status:  "warn",
			Message: fmt.Sprintf("missing: %s", dir),
			Details: "Run with --fix to create (it is also created on first use)",
		}}
	case err != nil:
		return []CheckResult{{
			Name:    "data directory",
			Status:  "fail",
			Message: fmt.Sprintf("error checking: %s", dir),
			Details: err.Error(),
		}}
	case !info.IsDir():
		return []CheckResult{{
			Name:    "data directory",
			Status:  "fail",
			Message: fmt.Sprintf("exists but is not a directory: %s", dir),
		}}
	default:
		mode := info.Mode().Perm()
		if mode&0077 != 0 {
			return []CheckResult{{
				Name:    "data directory",
				Status:  "warn",
				Message: fmt.Sprintf("permissions too open: %s (mode %04o)", dir, mode),
				Details: "Consider running: chmod 700 " + dir,
			}}
		}
		return []CheckResult{{
			Name:    "data directory",
			Status:  "pass",
			Message: fmt.Sprintf("exists (mode %04o)", mode),
		}}
	}
}

func printDoctorReport(cmd *cobra.Command, report *DoctorReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "flyward doctor")
	fmt.Fprintln(out)

	sections := []struct {
		title  string
		checks []CheckResult
	}{
		{"Checking flyctl...", report.CLITools},
		{"Checking Fly.io session...", report.Auth},
		{"Checking clipboard...", report.Clipboard},
		{"Checking configuration...", report.Config},
		{"Checking data directory...", report.DataDir},
	}

	for _, section := range sections {
		fmt.Fprintln(out, section.title)
		for _, check := range section.checks {
			printCheck(cmd, check)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Summary: %d passed", report.PassCount)
	if report.FixedCount > 0 {
		fmt.Fprintf(out, ", %d fixed", report.FixedCount)
	}
	if report.WarnCount > 0 {
		fmt.Fprintf(out, ", %d warnings", report.WarnCount)
	}
	if report.FailCount > 0 {
		fmt.Fprintf(out, ", %d failures", report.FailCount)
	}
	fmt.Fprintln(out)

	if report.OverallOK {
		fmt.Fprintln(out, "\n✓ All checks passed!")
	} else {
		fmt.Fprintln(out, "\n✗ Some issues found.")
	}
}

func printCheck(cmd *cobra.Command, check CheckResult) {
	var symbol string
	switch check.Status {
	case "pass":
		symbol = "  ✓"
	case "warn":
		symbol = "  ⚠"
	case "fail":
		symbol = "  ✗"
	case "fixed":
		symbol = "  ✓"
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s: %s\n", symbol, check.Name, check.Message)
	if check.Details != "" && check.Status != "pass" {
		fmt.Fprintf(out, "      %s\n", check.Details)
	}
}
