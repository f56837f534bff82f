package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSecretsSync(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, happyFlyctl))

	envPath := filepath.Join(t.TempDir(), ".env")
	content := "SECRET_KEY=abc\nPIRATE_WEATHER_API_KEY=pw123\n"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "secrets", "sync", "--app", "skycast", "--env-file", envPath)
	if err != nil {
		t.Fatalf("secrets sync: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "Synced 2 secret(s) to skycast") {
		t.Errorf("output = %q", out)
	}

	// Sync runs are recorded in history.
	out, err = execute(t, "history", "--secrets")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "SECRET_KEY") {
		t.Errorf("history missing sync entry:\n%s", out)
	}
}

func TestSecretsSyncMissingFile(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, happyFlyctl))

	_, err := execute(t, "secrets", "sync", "--app", "skycast", "--env-file",
		filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Fatal("expected error for missing env file")
	}
}

func TestStatusCommand(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, happyFlyctl))

	out, err := execute(t, "status", "--app", "skycast")
	if err != nil {
		t.Fatalf("status: %v\noutput: %s", err, out)
	}
	if !strings.Contains(out, "App: skycast") {
		t.Errorf("output = %q", out)
	}
}
