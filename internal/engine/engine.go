package engine

import (
	"log/slog"
	"sort"

	"github.com/crimson-sun/babylog/internal/engine/classifier"
	"github.com/crimson-sun/babylog/internal/engine/derive"
	"github.com/crimson-sun/babylog/internal/engine/merge"
	"github.com/crimson-sun/babylog/internal/engine/timestamp"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/model"
)

// Engine orchestrates the normalize → classify → derive → merge pipeline.
type Engine struct {
	norm      *timestamp.Normalizer
	merger    *merge.Merger
	subjectID string
}

// New creates an Engine with the provided components.
func New(norm *timestamp.Normalizer, merger *merge.Merger, subjectID string) *Engine {
	return &Engine{
		norm:      norm,
		merger:    merger,
		subjectID: subjectID,
	}
}

// Batch is the derived output of one export, ready for emission.
type Batch struct {
	Records   int
	Skipped   map[string]int
	Bottles   []model.BottleFeed
	Pumps     []model.Pump
	Diapers   []model.Diaper
	SleepLogs []model.SleepLog
	Sleeps    []model.SleepSession
}

// Normalize localizes every row and returns the records sorted ascending by
// instant. Rows with equal instants keep their input order.
func (e *Engine) Normalize(raws []model.RawRecord) ([]model.Record, error) {
	records := make([]model.Record, 0, len(raws))
	for _, raw := range raws {
		at, err := e.norm.Parse(raw.Start)
		if err != nil {
			return nil, errs.WrapMalformed(raw.Line, "Start", raw.Start, err)
		}
		records = append(records, model.Record{
			RawRecord: raw,
			Instant:   at,
			AgeInDays: e.norm.AgeInDays(at),
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Instant.Before(records[j].Instant)
	})
	return records, nil
}

// Process runs the whole derivation over raws. Any malformed row aborts.
func (e *Engine) Process(raws []model.RawRecord) (*Batch, error) {
	records, err := e.Normalize(raws)
	if err != nil {
		return nil, err
	}

	part := classifier.Split(records)
	b := &Batch{Records: len(records), Skipped: part.Skipped}
	for _, c := range model.Categories {
		slog.Debug("classified records", "category", c, "count", part.Len(c))
	}

	if b.Bottles, err = derive.Bottles(part.Bottles); err != nil {
		return nil, err
	}
	if b.Pumps, err = derive.Pumps(part.Pumps); err != nil {
		return nil, err
	}
	if b.Diapers, err = derive.Diapers(part.Diapers); err != nil {
		return nil, err
	}
	if b.SleepLogs, err = derive.SleepLogs(part.Sleeps, e.norm); err != nil {
		return nil, err
	}
	b.Sleeps = e.merger.MergeBatch(b.SleepLogs)

	slog.Debug("derived batch",
		"records", b.Records,
		"bottles", len(b.Bottles),
		"pumps", len(b.Pumps),
		"diapers", len(b.Diapers),
		"sleep_logs", len(b.SleepLogs),
		"sleep_sessions", len(b.Sleeps),
	)
	return b, nil
}

// Events maps one category of the batch onto events, in chronological order.
func (e *Engine) Events(b *Batch, c model.Category) []model.Event {
	var events []model.Event
	switch c {
	case model.CategoryBottle:
		for _, r := range b.Bottles {
			events = append(events, BottleEvent(e.subjectID, r))
		}
	case model.CategoryPump:
		for _, r := range b.Pumps {
			events = append(events, PumpEvent(e.subjectID, r))
		}
	case model.CategoryDiaper:
		for _, r := range b.Diapers {
			events = append(events, DiaperEvent(e.subjectID, r))
		}
	case model.CategorySleep:
		for _, r := range b.Sleeps {
			events = append(events, SleepEvent(e.subjectID, r))
		}
	}
	return events
}
