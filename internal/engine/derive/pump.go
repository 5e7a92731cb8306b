package derive

import (
	"strings"

	"github.com/crimson-sun/babylog/internal/engine/classifier"
	"github.com/crimson-sun/babylog/internal/model"
)

// Pumps derives pumping sessions. An empty side counts as 0 ml.
func Pumps(entries []classifier.Entry) ([]model.Pump, error) {
	out := make([]model.Pump, 0, len(entries))
	for _, e := range entries {
		r := e.Record
		left, err := side(r.Line, "Start Condition", r.StartCondition)
		if err != nil {
			return nil, err
		}
		right, err := side(r.Line, "End Condition", r.EndCondition)
		if err != nil {
			return nil, err
		}
		mins, err := ParseDuration(r.Line, "Duration", r.Duration)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Pump{
			Instant:         r.Instant,
			AgeInDays:       r.AgeInDays,
			LeftML:          left,
			RightML:         right,
			TotalML:         left + right,
			DurationMinutes: mins,
			Notes:           r.NotesOrNil(),
		})
	}
	return out, nil
}

func side(line int, field, s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ParseVolume(line, field, s)
}
