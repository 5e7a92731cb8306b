package model

import "time"

// RawRecord is one row of the tracker export, as read by a connector.
// Column meaning depends on Type; see the category records below.
type RawRecord struct {
	Line           int    // 1-based row number in the source, header excluded
	Type           string // Feed, Pump, Diaper, Sleep, ...
	StartLocation  string // Bottle, Breast, ...
	Start          string // naive local date-time
	End            string
	Duration       string // "H:MM" for timed categories, diaper color otherwise
	StartCondition string
	EndCondition   string
	Notes          string
}

// Record is a RawRecord localized into the subject's time zone.
type Record struct {
	RawRecord
	Instant   time.Time
	AgeInDays int
}

// NotesOrNil returns the row notes, or nil when the column is empty.
func (r Record) NotesOrNil() *string {
	return optional(r.Notes)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
