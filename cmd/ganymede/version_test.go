package main

import (
	"runtime"
	"strings"
	"testing"

	"mercator-hq/ganymede/pkg/cli"
)

func TestVersionDefaults(t *testing.T) {
	// Test that version variables can be set and retrieved
	origVersion := Version
	origGitCommit := GitCommit
	origBuildDate := BuildDate

	// Set test values
	Version = "0.1.0-test"
	GitCommit = "abc123"
	BuildDate = "2026-08-25"

	// Verify values
	if Version != "0.1.0-test" {
		t.Errorf("Version = %q, want %q", Version, "0.1.0-test")
	}
	if GitCommit != "abc123" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123")
	}
	if BuildDate != "2026-08-25" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2026-08-25")
	}

	// Restore original values
	Version = origVersion
	GitCommit = origGitCommit
	BuildDate = origBuildDate
}

func TestVersionCommandExists(t *testing.T) {
	// Test that the version command is properly initialized
	if versionCmd == nil {
		t.Fatal("versionCmd is nil")
	}

	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}

	if versionCmd.Short == "" {
		t.Error("versionCmd.Short should not be empty")
	}

	if versionCmd.RunE == nil {
		t.Error("versionCmd.RunE should not be nil")
	}
}

func TestVersionInfoString(t *testing.T) {
	info := versionInfo{
		Version:   "1.2.3",
		GitCommit: "abc123",
		BuildDate: "2026-08-25",
		GoVersion: runtime.Version(),
		Platform:  "linux/amd64",
	}

	out := info.String()
	for _, want := range []string{"Mercator Ganymede 1.2.3", "abc123", "linux/amd64"} {
		if !strings.Contains(out, want) {
			t.Errorf("versionInfo.String() missing %q:\n%s", want, out)
		}
	}
}

func TestPrintVersionFormats(t *testing.T) {
	orig := versionFlags.format
	defer func() { versionFlags.format = orig }()

	versionFlags.format = "text"
	if err := printVersion(nil, []string{}); err != nil {
		t.Errorf("printVersion() with text format returned error: %v", err)
	}

	versionFlags.format = "json"
	if err := printVersion(nil, []string{}); err != nil {
		t.Errorf("printVersion() with json format returned error: %v", err)
	}
}

func TestPrintVersionBadFormat(t *testing.T) {
	orig := versionFlags.format
	defer func() { versionFlags.format = orig }()

	versionFlags.format = "xml"
	err := printVersion(nil, []string{})
	if err == nil {
		t.Fatal("printVersion() with unsupported format should return error")
	}
	if cli.ExitCode(err) != 2 {
		t.Errorf("ExitCode = %d, want 2", cli.ExitCode(err))
	}
}
