package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/crimson-sun/babylog/internal/connector"
	"github.com/crimson-sun/babylog/internal/engine"
	"github.com/crimson-sun/babylog/internal/model"
	"github.com/crimson-sun/babylog/internal/output"
)

// Window bounds which events are emitted. Since is inclusive, Until is
// exclusive; a zero bound is open.
type Window struct {
	Since time.Time
	Until time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Since.IsZero() && t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && !t.Before(w.Until) {
		return false
	}
	return true
}

// Summary describes one completed (or aborted) run.
type Summary struct {
	RunID    string
	Rows     int
	Skipped  map[string]int
	Emitted  map[model.Category]int
	Filtered int
	Elapsed  time.Duration
}

// Total returns the number of events delivered across all categories.
func (s *Summary) Total() int {
	n := 0
	for _, c := range s.Emitted {
		n += c
	}
	return n
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWindow restricts emission to events inside w. Metrics are still
// derived from the full export.
func WithWindow(w Window) Option {
	return func(p *Pipeline) { p.window = w }
}

// WithRunID tags the run summary.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// Pipeline connects a connector, engine, and output into a processing pipeline.
type Pipeline struct {
	connector connector.Connector
	engine    *engine.Engine
	output    output.Output
	window    Window
	runID     string
}

// New creates a Pipeline from the given components.
func New(conn connector.Connector, eng *engine.Engine, out output.Output, opts ...Option) *Pipeline {
	p := &Pipeline{
		connector: conn,
		engine:    eng,
		output:    out,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run loads the export, derives every record and delivers the events in
// four passes: bottle feeds, pumps, diapers, then sleep sessions. The first
// error stops the run; events already delivered stay delivered. The
// returned Summary is never nil.
func (p *Pipeline) Run(ctx context.Context, cfg connector.ConnectorConfig) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: p.runID, Emitted: make(map[model.Category]int)}
	defer func() { sum.Elapsed = time.Since(start) }()

	raws, err := p.connector.Load(ctx, cfg)
	if err != nil {
		return sum, fmt.Errorf("pipeline load: %w", err)
	}
	sum.Rows = len(raws)
	slog.Info("export loaded", "provider", cfg.Provider, "path", cfg.Path, "rows", humanize.Comma(int64(len(raws))))

	batch, err := p.engine.Process(raws)
	if err != nil {
		return sum, fmt.Errorf("pipeline process: %w", err)
	}
	sum.Skipped = batch.Skipped

	for _, c := range model.Categories {
		for _, event := range p.engine.Events(batch, c) {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			if !p.window.Contains(event.Timestamp) {
				sum.Filtered++
				continue
			}
			if err := p.output.Write(ctx, event); err != nil {
				return sum, fmt.Errorf("pipeline output %s: %w", event.Name, err)
			}
			sum.Emitted[c]++
		}
		slog.Info("category emitted", "category", string(c), "events", humanize.Comma(int64(sum.Emitted[c])))
	}
	return sum, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}

// LogSummary writes the run summary at info level.
func LogSummary(s *Summary) {
	attrs := []any{
		"rows", humanize.Comma(int64(s.Rows)),
		"events", humanize.Comma(int64(s.Total())),
		"elapsed", s.Elapsed.Round(time.Millisecond).String(),
	}
	for _, c := range model.Categories {
		attrs = append(attrs, string(c), s.Emitted[c])
	}
	if s.Filtered > 0 {
		attrs = append(attrs, "outside_window", s.Filtered)
	}
	skipped := 0
	keys := make([]string, 0, len(s.Skipped))
	for k, n := range s.Skipped {
		skipped += n
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if skipped > 0 {
		attrs = append(attrs, "skipped", humanize.Comma(int64(skipped)))
		for _, k := range keys {
			slog.Debug("rows skipped", "type", k, "count", s.Skipped[k])
		}
	}
	slog.Info("run complete", attrs...)
}
