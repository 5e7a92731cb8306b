package multi

import (
	"context"
	"errors"
	"fmt"

	"github.com/crimson-sun/babylog/internal/model"
	"github.com/crimson-sun/babylog/internal/output"
)

// Sink is an output with the name it was configured under.
type Sink struct {
	Name   string
	Output output.Output
}

// Multi fans out events to multiple sinks. Each Write delivers the event to
// the sinks in order and stops at the first failure, so a later sink never
// records an event an earlier one rejected.
type Multi struct {
	sinks []Sink
}

// New creates a Multi that fans out to the given sinks.
func New(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Names returns the sink names in delivery order.
func (m *Multi) Names() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name
	}
	return names
}

// Write delivers the event to each sink in turn. The first error is
// returned prefixed with the sink name; remaining sinks are skipped.
func (m *Multi) Write(ctx context.Context, event model.Event) error {
	for _, s := range m.sinks {
		if err := s.Output.Write(ctx, event); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}

// Close calls Close on every sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Output.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}
