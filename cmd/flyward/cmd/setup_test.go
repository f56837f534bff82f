package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joyshmitz/flyward/internal/setup"
)

// resetFlags restores every flag on the shared command tree to its default
// so flag values set by one test do not leak into the next.
func resetFlags(c *cobra.Command) {
	c.Flags().Visit(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// writeFakeFlyctl installs a fake flyctl script into its own PATH dir.
// The script body receives the flyctl arguments as "$@".
func writeFakeFlyctl(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(filepath.Join(dir, "flyctl"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return dir
}

// isolate points config and history at temp locations.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("FLYWARD_CONFIG", filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv("FLYWARD_HOME", t.TempDir())
}

// execute runs the CLI with the given args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

const happyFlyctl = `case "$1" in
  auth)    echo "dev@example.com" ;;
  tokens)  echo "FlyV1 fm2_testtoken" ;;
  secrets) exit 0 ;;
  status)  echo "App: skycast" ;;
  version) echo "flyctl v0.3.0" ;;
  *)       exit 1 ;;
esac`

func TestSetupCommand(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, happyFlyctl))

	out, err := execute(t, "setup")
	if err != nil {
		t.Fatalf("setup: %v\noutput: %s", err, out)
	}

	for _, want := range []string{
		"FlyV1 fm2_testtoken",
		"FLY_API_TOKEN",
		"Logged in as: dev@example.com",
		// No clipboard utility on the fake PATH.
		"copy the token above manually",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSetupCommandRecordsHistory(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, happyFlyctl))

	if out, err := execute(t, "setup"); err != nil {
		t.Fatalf("setup: %v\noutput: %s", err, out)
	}

	out, err := execute(t, "history")
	if err != nil {
		t.Fatalf("history: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "github-actions-deploy-") {
		t.Errorf("history missing token entry:\n%s", out)
	}
	if strings.Contains(out, "fm2_testtoken") {
		t.Errorf("history must not contain the token value:\n%s", out)
	}
}

func TestSetupCommandNotInstalled(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", t.TempDir()) // empty dir, no flyctl

	out, err := execute(t, "setup")
	if !errors.Is(err, setup.ErrNotInstalled) {
		t.Fatalf("err = %v, want ErrNotInstalled", err)
	}
	if !strings.Contains(out, "flyctl is not installed") {
		t.Errorf("output = %q", out)
	}
}

func TestSetupCommandNotAuthenticated(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, `exit 1`))

	out, err := execute(t, "setup")
	if !errors.Is(err, setup.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if !strings.Contains(out, "not logged in") {
		t.Errorf("output = %q", out)
	}
}

func TestSetupCommandEmptyToken(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, `case "$1" in
  auth)   echo "dev@example.com" ;;
  tokens) exit 0 ;;
  *)      exit 1 ;;
esac`))

	out, err := execute(t, "setup")
	if !errors.Is(err, setup.ErrEmptyToken) {
		t.Fatalf("err = %v, want ErrEmptyToken", err)
	}
	if !strings.Contains(out, "Failed to generate a deploy token") {
		t.Errorf("output = %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, happyFlyctl))

	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "flyward") {
		t.Errorf("output = %q", out)
	}
}
