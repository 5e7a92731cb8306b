package babylog

import (
	"context"
	"fmt"
	"io"

	"github.com/crimson-sun/babylog/internal/connector/csvexport"
	"github.com/crimson-sun/babylog/internal/engine"
	"github.com/crimson-sun/babylog/internal/engine/merge"
	"github.com/crimson-sun/babylog/internal/engine/timestamp"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/model"
)

// Babylog derives analytics events from export rows.
// Safe for concurrent use.
type Babylog struct {
	engine *engine.Engine
}

// New creates a Babylog instance. WithBirth is required.
func New(opts ...Option) (*Babylog, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.birth == "" {
		return nil, errs.Configuration("babylog: birth date is required", nil)
	}
	if o.maxSleepGap <= 0 {
		return nil, errs.Configuration(fmt.Sprintf("babylog: sleep max gap must be positive, got %s", o.maxSleepGap), nil)
	}
	if o.nightStartHour < 1 || o.nightStartHour > 23 || o.nightEndHour < 1 || o.nightEndHour > 23 {
		return nil, errs.Configuration(fmt.Sprintf("babylog: night hours must be 1-23, got %d and %d", o.nightStartHour, o.nightEndHour), nil)
	}

	norm, err := timestamp.New(o.timezone, o.birth)
	if err != nil {
		return nil, errs.Configuration("babylog", err)
	}
	merger := merge.New(merge.Config{
		MaxGap:         o.maxSleepGap,
		NightStartHour: o.nightStartHour,
		NightEndHour:   o.nightEndHour,
	})
	return &Babylog{engine: engine.New(norm, merger, o.subjectID)}, nil
}

// Process derives events from rows. Events come in four groups: bottle
// feeds, pumps, diapers, then sleep sessions, each in chronological order.
// Rows of other types are ignored. A malformed row fails the whole call;
// errors name the 1-based row index.
func (b *Babylog) Process(rows []Row) ([]Event, error) {
	raws := make([]model.RawRecord, len(rows))
	for i, r := range rows {
		raws[i] = r.raw(i + 1)
	}
	return b.process(raws)
}

// ProcessCSV reads a CSV export and derives its events.
func (b *Babylog) ProcessCSV(ctx context.Context, r io.Reader) ([]Event, error) {
	raws, err := csvexport.Read(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("babylog: %w", err)
	}
	return b.process(raws)
}

func (b *Babylog) process(raws []model.RawRecord) ([]Event, error) {
	batch, err := b.engine.Process(raws)
	if err != nil {
		return nil, err
	}
	var events []Event
	for _, c := range model.Categories {
		for _, e := range b.engine.Events(batch, c) {
			events = append(events, eventFromModel(e))
		}
	}
	return events, nil
}

// IsMalformedInput reports whether err was caused by an unparseable row.
func IsMalformedInput(err error) bool {
	return errs.Is(err, errs.CategoryMalformedInput)
}
