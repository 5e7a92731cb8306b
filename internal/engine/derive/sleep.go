package derive

import (
	"strings"
	"time"

	"github.com/crimson-sun/babylog/internal/engine/classifier"
	"github.com/crimson-sun/babylog/internal/engine/timestamp"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/model"
)

// SleepLogs derives individual sleep intervals. A row with no End closes
// at Start plus its logged duration.
func SleepLogs(entries []classifier.Entry, norm *timestamp.Normalizer) ([]model.SleepLog, error) {
	out := make([]model.SleepLog, 0, len(entries))
	for _, e := range entries {
		r := e.Record
		mins, err := ParseDuration(r.Line, "Duration", r.Duration)
		if err != nil {
			return nil, err
		}
		end := r.Instant.Add(time.Duration(mins) * time.Minute)
		if strings.TrimSpace(r.End) != "" {
			end, err = norm.Parse(r.End)
			if err != nil {
				return nil, errs.WrapMalformed(r.Line, "End", r.End, err)
			}
		}
		if end.Before(r.Instant) {
			return nil, errs.MalformedInput(r.Line, "End", r.End, "sleep ends before it starts")
		}
		out = append(out, model.SleepLog{
			Start:           r.Instant,
			End:             end,
			DurationMinutes: mins,
			AgeInDays:       r.AgeInDays,
			Notes:           r.NotesOrNil(),
		})
	}
	return out, nil
}
