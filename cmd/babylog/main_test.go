package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/crimson-sun/babylog/internal/config"
	"github.com/crimson-sun/babylog/internal/errs"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"interrupted", fmt.Errorf("pipeline: %w", context.Canceled), exitInterrupted},
		{"configuration", errs.Configuration("unknown time zone", nil), exitConfig},
		{"malformed", errs.MalformedInput(3, "Amount", "x", "bad volume"), exitError},
		{"other", errors.New("boom"), exitError},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("%s: exitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}

// flagsFrom runs the app with args and captures the config after flags
// are applied.
func flagsFrom(t *testing.T, args ...string) config.Config {
	t.Helper()
	cfg := config.Default()
	app := newApp()
	app.Action = func(c *cli.Context) error {
		applyFlags(c, &cfg)
		return nil
	}
	if err := app.Run(append([]string{"babylog"}, args...)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return cfg
}

func TestApplyFlags(t *testing.T) {
	for _, key := range []string{"BABYLOG_INPUT", "BABYLOG_OUTPUT", "BABYLOG_DRY_RUN", "BABYLOG_SINCE", "BABYLOG_UNTIL", "BABYLOG_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := flagsFrom(t)
	if cfg.Connector.Path != "data/export.csv" || len(cfg.Output.Sinks) != 1 {
		t.Fatalf("no flags should leave defaults, got %+v", cfg)
	}

	cfg = flagsFrom(t, "--input", "huck.csv", "--output", "stdout,ledger", "--since", "2024-05-04", "--log-level", "debug")
	if cfg.Connector.Path != "huck.csv" {
		t.Errorf("input = %q", cfg.Connector.Path)
	}
	if fmt.Sprint(cfg.Output.Sinks) != "[stdout ledger]" {
		t.Errorf("sinks = %v", cfg.Output.Sinks)
	}
	if cfg.Since != "2024-05-04" || cfg.LogLevel != "debug" {
		t.Errorf("since/log-level = %q/%q", cfg.Since, cfg.LogLevel)
	}

	cfg = flagsFrom(t, "--output", "posthog,file", "--dry-run")
	if fmt.Sprint(cfg.Output.Sinks) != "[stdout]" {
		t.Errorf("dry run should select stdout only, got %v", cfg.Output.Sinks)
	}

	t.Setenv("BABYLOG_UNTIL", "2024-06-01")
	cfg = flagsFrom(t)
	if cfg.Until != "2024-06-01" {
		t.Errorf("until from env = %q", cfg.Until)
	}
}

func TestRunMainDryRun(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	csv := "Type,Start,End,Duration,Start Condition,Start Location,End Condition,Notes\n" +
		"Feed,2024-05-03 06:00,,,Formula,Bottle,120ml,\n"
	path := filepath.Join(dir, "export.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BABYLOG_BIRTH", "2024-05-01")
	t.Setenv("BABYLOG_POSTHOG_API_KEY", "")

	if code := runMain([]string{"babylog", "--input", path, "--output", "file"}); code != exitOK {
		t.Fatalf("runMain exit code = %d", code)
	}
	if _, err := os.Stat(filepath.Join(dir, "events.ndjson")); err != nil {
		t.Fatalf("expected events file: %v", err)
	}

	if code := runMain([]string{"babylog", "--input", path, "--output", "file", "--since", "never"}); code != exitConfig {
		t.Fatalf("bad window should exit %d, got %d", exitConfig, code)
	}
}
