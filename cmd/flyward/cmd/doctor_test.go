package cmd

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDoctorJSON(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", writeFakeFlyctl(t, happyFlyctl))

	out, err := execute(t, "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor: %v\noutput: %s", err, out)
	}

	var report DoctorReport
	if jsonErr := json.Unmarshal([]byte(out), &report); jsonErr != nil {
		t.Fatalf("unmarshal report: %v\noutput: %s", jsonErr, out)
	}

	if len(report.CLITools) != 1 || report.CLITools[0].Status != "pass" {
		t.Errorf("CLITools = %+v", report.CLITools)
	}
	if len(report.Auth) != 1 || report.Auth[0].Status != "pass" {
		t.Errorf("Auth = %+v", report.Auth)
	}
	if !strings.Contains(report.Auth[0].Message, "dev@example.com") {
		t.Errorf("Auth message = %q", report.Auth[0].Message)
	}
	// Fake PATH has no clipboard utility.
	if len(report.Clipboard) != 1 || report.Clipboard[0].Status != "warn" {
		t.Errorf("Clipboard = %+v", report.Clipboard)
	}
}

func TestDoctorFailsWithoutFlyctl(t *testing.T) {
	isolate(t)
	t.Setenv("PATH", t.TempDir())

	out, err := execute(t, "doctor")
	if err == nil {
		t.Fatalf("expected failure, output: %s", out)
	}
	if !strings.Contains(out, "not found in PATH") {
		t.Errorf("output = %q", out)
	}
}
