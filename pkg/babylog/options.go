package babylog

import (
	"time"

	"github.com/crimson-sun/babylog/internal/engine/merge"
)

type options struct {
	timezone       string
	birth          string
	subjectID      string
	maxSleepGap    time.Duration
	nightStartHour int
	nightEndHour   int
}

// Option configures a Babylog instance.
type Option func(*options)

// WithTimezone sets the IANA zone the export's wall-clock times are in.
// Default: "America/New_York".
func WithTimezone(zone string) Option {
	return func(o *options) {
		o.timezone = zone
	}
}

// WithBirth sets the subject's birth date or date-time in the export's zone.
// Required.
func WithBirth(birth string) Option {
	return func(o *options) {
		o.birth = birth
	}
}

// WithSubjectID sets the distinct id every event carries. Default: "9098".
func WithSubjectID(id string) Option {
	return func(o *options) {
		o.subjectID = id
	}
}

// WithMaxSleepGap sets the largest gap between two sleep logs that still
// merges them into one session. Must be positive. Default: 10 minutes.
func WithMaxSleepGap(d time.Duration) Option {
	return func(o *options) {
		o.maxSleepGap = d
	}
}

// WithNightHours sets the hours bounding night sleep: a session is Night when
// either end falls at or after start, or at or before end. Both must be in
// 1-23. Default: 19 and 7.
func WithNightHours(start, end int) Option {
	return func(o *options) {
		o.nightStartHour = start
		o.nightEndHour = end
	}
}

func defaultOptions() options {
	return options{
		timezone:       "America/New_York",
		subjectID:      "9098",
		maxSleepGap:    merge.DefaultMaxGap,
		nightStartHour: merge.DefaultNightStartHour,
		nightEndHour:   merge.DefaultNightEndHour,
	}
}
