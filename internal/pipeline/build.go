package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/crimson-sun/babylog/internal/config"
	"github.com/crimson-sun/babylog/internal/connector"
	"github.com/crimson-sun/babylog/internal/engine"
	"github.com/crimson-sun/babylog/internal/engine/merge"
	"github.com/crimson-sun/babylog/internal/engine/timestamp"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/output"
	"github.com/crimson-sun/babylog/internal/output/calendar"
	"github.com/crimson-sun/babylog/internal/output/file"
	"github.com/crimson-sun/babylog/internal/output/ledger"
	"github.com/crimson-sun/babylog/internal/output/multi"
	"github.com/crimson-sun/babylog/internal/output/paced"
	"github.com/crimson-sun/babylog/internal/output/posthog"
	"github.com/crimson-sun/babylog/internal/output/stdout"
)

// Build assembles a Pipeline from validated configuration. Outputs opened
// before a failure are closed again.
func Build(ctx context.Context, cfg config.Config, runID string) (*Pipeline, error) {
	norm, err := timestamp.New(cfg.Engine.Timezone, cfg.Engine.Birth)
	if err != nil {
		return nil, errs.Configuration("engine", err)
	}
	window, err := ParseWindow(norm, cfg.Since, cfg.Until)
	if err != nil {
		return nil, err
	}
	merger := merge.New(merge.Config{
		MaxGap:         cfg.Engine.SleepMaxGap,
		NightStartHour: cfg.Engine.NightStartHour,
		NightEndHour:   cfg.Engine.NightEndHour,
	})
	eng := engine.New(norm, merger, cfg.Engine.SubjectID)

	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		return nil, errs.Configuration("connector", err)
	}

	out, err := BuildOutput(ctx, cfg, runID)
	if err != nil {
		return nil, err
	}
	return New(ctor(), eng, out, WithWindow(window), WithRunID(runID)), nil
}

// ConnectorConfig returns the source settings in connector form.
func ConnectorConfig(cfg config.Config) connector.ConnectorConfig {
	return connector.ConnectorConfig{
		Provider: cfg.Connector.Provider,
		Path:     cfg.Connector.Path,
		Extra:    cfg.Connector.Extra,
	}
}

// BuildOutput opens every configured sink and fans out to them in the
// order given, except that PostHog always goes first so local journals only
// record events it accepted. The PostHog sink is paced.
func BuildOutput(ctx context.Context, cfg config.Config, runID string) (*multi.Multi, error) {
	verbosity, err := output.ParseVerbosity(cfg.Output.Verbosity)
	if err != nil {
		return nil, errs.Configuration("output", err)
	}

	var sinks []multi.Sink
	closeAll := func() {
		for _, s := range sinks {
			s.Output.Close()
		}
	}

	for _, name := range deliveryOrder(cfg.Output.Sinks) {
		var out output.Output
		switch strings.ToLower(name) {
		case config.SinkPostHog:
			ph := posthog.New(cfg.PostHog.Host, cfg.PostHog.APIKey, posthog.WithTimeout(cfg.PostHog.Timeout))
			out = paced.New(ph, paced.WithInterval(cfg.PostHog.Pacing))
		case config.SinkStdout:
			out = stdout.New(verbosity, cfg.Output.Pretty)
		case config.SinkFile:
			var opts []file.Option
			if cfg.Output.FileMaxSize > 0 {
				opts = append(opts, file.WithMaxSize(cfg.Output.FileMaxSize))
			}
			if cfg.Output.FileTruncate {
				opts = append(opts, file.WithTruncate())
			}
			out, err = file.New(cfg.Output.FilePath, verbosity, opts...)
		case config.SinkLedger:
			out, err = ledger.Open(ctx, cfg.Output.LedgerPath, runID)
		case config.SinkCalendar:
			out = calendar.New(cfg.Output.CalendarPath)
		default:
			err = errs.Configuration(fmt.Sprintf("unknown output sink %q", name), nil)
		}
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("output %s: %w", name, err)
		}
		sinks = append(sinks, multi.Sink{Name: name, Output: out})
	}
	if len(sinks) == 0 {
		return nil, errs.Configuration("no output sink selected", nil)
	}
	return multi.New(sinks...), nil
}

// deliveryOrder moves the PostHog sink to the front and keeps the relative
// order of the rest.
func deliveryOrder(names []string) []string {
	ordered := make([]string, 0, len(names))
	for _, n := range names {
		if strings.EqualFold(n, config.SinkPostHog) {
			ordered = append(ordered, n)
		}
	}
	for _, n := range names {
		if !strings.EqualFold(n, config.SinkPostHog) {
			ordered = append(ordered, n)
		}
	}
	return ordered
}

// ParseWindow localizes the naive since/until bounds. Empty bounds are open.
func ParseWindow(norm *timestamp.Normalizer, since, until string) (Window, error) {
	var (
		w    Window
		errl []error
		err  error
	)
	if strings.TrimSpace(since) != "" {
		if w.Since, err = norm.Parse(since); err != nil {
			errl = append(errl, fmt.Errorf("since: %w", err))
		}
	}
	if strings.TrimSpace(until) != "" {
		if w.Until, err = norm.Parse(until); err != nil {
			errl = append(errl, fmt.Errorf("until: %w", err))
		}
	}
	if len(errl) == 0 && !w.Since.IsZero() && !w.Until.IsZero() && !w.Since.Before(w.Until) {
		errl = append(errl, fmt.Errorf("since %s is not before until %s", since, until))
	}
	if len(errl) > 0 {
		return Window{}, errs.Configuration("emission window", errors.Join(errl...))
	}
	return w, nil
}
