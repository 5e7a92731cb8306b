package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/crimson-sun/babylog/internal/config"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/logging"
	"github.com/crimson-sun/babylog/internal/pipeline"

	// Register connector implementations.
	_ "github.com/crimson-sun/babylog/internal/connector/csvexport"
)

var version = "dev"

const (
	exitOK          = 0
	exitError       = 1
	exitConfig      = 2
	exitInterrupted = 130
)

// main delegates to runMain so deferred cleanup runs before os.Exit.
func main() {
	os.Exit(runMain(os.Args))
}

func runMain(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := newApp().RunContext(ctx, args)
	code := exitCode(err)
	if code != exitOK {
		slog.Error("babylog failed", "error", err)
	}
	return code
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errs.Is(err, errs.CategoryConfiguration):
		return exitConfig
	default:
		return exitError
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "babylog",
		Usage:   "send a baby tracker CSV export to PostHog as analytics events",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
				EnvVars: []string{"BABYLOG_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "CSV export to read",
				EnvVars: []string{"BABYLOG_INPUT"},
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "comma-separated sinks: " + strings.Join([]string{config.SinkPostHog, config.SinkStdout, config.SinkFile, config.SinkLedger, config.SinkCalendar}, ", "),
				EnvVars: []string{"BABYLOG_OUTPUT"},
			},
			&cli.BoolFlag{
				Name:    "dry-run",
				Usage:   "print events to stdout instead of sending them",
				EnvVars: []string{"BABYLOG_DRY_RUN"},
			},
			&cli.StringFlag{
				Name:    "since",
				Usage:   "only emit events at or after this local date-time",
				EnvVars: []string{"BABYLOG_SINCE"},
			},
			&cli.StringFlag{
				Name:    "until",
				Usage:   "only emit events before this local date-time",
				EnvVars: []string{"BABYLOG_UNTIL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"BABYLOG_LOG_LEVEL"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	applyFlags(c, &cfg)

	runID := uuid.NewString()
	logging.Init(cfg.HasSink(config.SinkStdout), logging.ParseLevel(cfg.LogLevel), runID)

	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := pipeline.Build(c.Context, cfg, runID)
	if err != nil {
		return err
	}

	slog.Info("babylog starting",
		"version", version,
		"provider", cfg.Connector.Provider,
		"input", cfg.Connector.Path,
		"sinks", strings.Join(cfg.Output.Sinks, ","),
	)
	sum, runErr := p.Run(c.Context, pipeline.ConnectorConfig(cfg))
	if closeErr := p.Close(); closeErr != nil {
		runErr = errors.Join(runErr, fmt.Errorf("close outputs: %w", closeErr))
	}
	pipeline.LogSummary(sum)
	return runErr
}

// applyFlags overrides loaded configuration with flags given on the command
// line or through their environment variables.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("input") {
		cfg.Connector.Path = c.String("input")
	}
	if c.IsSet("output") {
		cfg.Output.Sinks = config.SplitSinks(c.String("output"))
	}
	if c.Bool("dry-run") {
		cfg.Output.Sinks = []string{config.SinkStdout}
	}
	if c.IsSet("since") {
		cfg.Since = c.String("since")
	}
	if c.IsSet("until") {
		cfg.Until = c.String("until")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}
