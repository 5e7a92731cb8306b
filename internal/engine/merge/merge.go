package merge

import (
	"strings"
	"time"

	"github.com/crimson-sun/babylog/internal/engine/derive"
	"github.com/crimson-sun/babylog/internal/model"
)

// Defaults for Config fields left zero.
const (
	DefaultMaxGap         = 10 * time.Minute
	DefaultNightStartHour = 19
	DefaultNightEndHour   = 7
)

// Config controls sleep merging and day/night labelling.
type Config struct {
	MaxGap         time.Duration // largest gap that still joins two logs (default 10m)
	NightStartHour int           // hours >= this are night (default 19)
	NightEndHour   int           // hours <= this are night (default 7)
}

// Merger collapses adjacent sleep logs into sessions.
type Merger struct {
	cfg Config
}

// New creates a Merger, filling zero config fields with defaults.
func New(cfg Config) *Merger {
	if cfg.MaxGap <= 0 {
		cfg.MaxGap = DefaultMaxGap
	}
	if cfg.NightStartHour <= 0 {
		cfg.NightStartHour = DefaultNightStartHour
	}
	if cfg.NightEndHour <= 0 {
		cfg.NightEndHour = DefaultNightEndHour
	}
	return &Merger{cfg: cfg}
}

// session accumulates logs joined into one span.
type session struct {
	start    time.Time
	end      time.Time
	duration int
	minAge   int
	count    int
	notes    []string
}

func seed(l model.SleepLog) *session {
	s := &session{
		start:    l.Start,
		end:      l.End,
		duration: l.DurationMinutes,
		minAge:   l.AgeInDays,
		count:    1,
	}
	s.addNote(l.Notes)
	return s
}

func (s *session) addNote(n *string) {
	if n != nil && *n != "" {
		s.notes = append(s.notes, *n)
	}
}

// MergeBatch merges logs sorted ascending by start. The gap to each log is
// measured from the running end of the open session, so overlapping logs
// always join. Sessions are returned in start order.
func (m *Merger) MergeBatch(logs []model.SleepLog) []model.SleepSession {
	if len(logs) == 0 {
		return nil
	}

	var closed []*session
	cur := seed(logs[0])
	for _, l := range logs[1:] {
		if l.Start.Sub(cur.end) <= m.cfg.MaxGap {
			if l.End.After(cur.end) {
				cur.end = l.End
			}
			cur.duration = int(cur.end.Sub(cur.start) / time.Minute)
			if l.AgeInDays < cur.minAge {
				cur.minAge = l.AgeInDays
			}
			cur.count++
			cur.addNote(l.Notes)
			continue
		}
		closed = append(closed, cur)
		cur = seed(l)
	}
	closed = append(closed, cur)

	result := make([]model.SleepSession, 0, len(closed))
	var prev time.Time
	for _, s := range closed {
		out := model.SleepSession{
			Start:              s.start,
			End:                s.end,
			DurationMinutes:    s.duration,
			AgeInDays:          s.minAge,
			LogCount:           s.count,
			TimeSinceLastHours: derive.HoursSince(prev, s.start),
			Period:             m.Period(s.start, s.end),
		}
		if len(s.notes) > 0 {
			joined := strings.Join(s.notes, "; ")
			out.Notes = &joined
		}
		result = append(result, out)
		prev = s.start
	}
	return result
}

// Period labels a span Night when either endpoint's local hour falls in
// the night window, Day otherwise.
func (m *Merger) Period(start, end time.Time) string {
	if m.isNightHour(start.Hour()) || m.isNightHour(end.Hour()) {
		return model.PeriodNight
	}
	return model.PeriodDay
}

func (m *Merger) isNightHour(h int) bool {
	return h >= m.cfg.NightStartHour || h <= m.cfg.NightEndHour
}

// AsLogs turns sessions back into logs, one per session.
func AsLogs(sessions []model.SleepSession) []model.SleepLog {
	logs := make([]model.SleepLog, len(sessions))
	for i, s := range sessions {
		logs[i] = model.SleepLog{
			Start:           s.Start,
			End:             s.End,
			DurationMinutes: s.DurationMinutes,
			AgeInDays:       s.AgeInDays,
			Notes:           s.Notes,
		}
	}
	return logs
}
