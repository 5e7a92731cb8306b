package derive

import (
	"strings"
	"time"

	"github.com/crimson-sun/babylog/internal/engine/classifier"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/model"
)

// IsNightBottle reports whether a feed at t counts as a night bottle:
// local hour after 21 or before 7.
func IsNightBottle(t time.Time) bool {
	h := t.Hour()
	return h > 21 || h < 7
}

// Bottles derives bottle feeds. Entries must be in chronological order.
// The night flag depends only on each feed's own local hour.
func Bottles(entries []classifier.Entry) ([]model.BottleFeed, error) {
	out := make([]model.BottleFeed, 0, len(entries))
	var prev time.Time
	for _, e := range entries {
		r := e.Record
		amount, err := ParseVolume(r.Line, "End Condition", r.EndCondition)
		if err != nil {
			return nil, err
		}
		feedType := strings.TrimSpace(r.StartCondition)
		if feedType == "" {
			return nil, errs.MalformedInput(r.Line, "Start Condition", r.StartCondition, "bottle feed has no feed type")
		}
		out = append(out, model.BottleFeed{
			Instant:            r.Instant,
			AgeInDays:          r.AgeInDays,
			AmountML:           amount,
			FeedType:           feedType,
			TimeSinceLastHours: HoursSince(prev, r.Instant),
			NightBottle:        IsNightBottle(r.Instant),
			Notes:              r.NotesOrNil(),
		})
		prev = r.Instant
	}
	return out, nil
}
