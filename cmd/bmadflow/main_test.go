package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"

	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "1.2.3") {
		t.Errorf("--version output should contain version: %q", out)
	}
	if !strings.Contains(out, "bmadflow") {
		t.Errorf("--version output should contain 'bmadflow': %q", out)
	}
}

func TestRootCommand_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, expected := range []string{"bmadflow", "Usage:", "--json", "--project", "--bundle", "Workflow Commands:", "start", "serve"} {
		if !strings.Contains(out, expected) {
			t.Errorf("--help output should contain %q", expected)
		}
	}
}

func TestRootCommand_JSONWithoutSubcommand(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--json"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without a subcommand")
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, buf.String())
	}
	if result["kind"] != "usage" {
		t.Errorf("kind = %v, want usage", result["kind"])
	}
	if result["code"] != float64(1) {
		t.Errorf("code = %v, want 1", result["code"])
	}
}

func TestBuildVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{name: "plain", version: "dev", commit: "none", date: "unknown", want: "dev"},
		{name: "release", version: "0.4.0", commit: "0123456789abcdef", date: "2026-01-02", want: "0.4.0 (0123456, 2026-01-02)"},
		{name: "short commit", version: "0.4.0", commit: "abc", date: "2026-01-02", want: "0.4.0 (abc, 2026-01-02)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldV, oldC, oldD := version, commit, date
			t.Cleanup(func() { version, commit, date = oldV, oldC, oldD })
			version, commit, date = tt.version, tt.commit, tt.date

			if got := buildVersion(); got != tt.want {
				t.Errorf("buildVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	buf := new(bytes.Buffer)

	logger, err := newLogger(buf, "warn", false)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug record written at warn level: %q", buf.String())
	}

	logger, err = newLogger(buf, "warn", true)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	logger.Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("--verbose did not enable debug records: %q", buf.String())
	}

	if _, err := newLogger(buf, "loud", false); err == nil {
		t.Error("expected error for an unknown level")
	}
}
