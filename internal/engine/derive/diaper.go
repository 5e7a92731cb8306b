package derive

import (
	"regexp"
	"time"

	"github.com/crimson-sun/babylog/internal/engine/classifier"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/model"
)

var (
	peeRe = regexp.MustCompile(`(?i)pee[: ]*(\w+)`)
	pooRe = regexp.MustCompile(`(?i)poo[: ]*(\w+)`)
)

// Diapers derives diaper changes from the End Condition description,
// e.g. "Pee:small Poo:medium". A row naming neither is malformed.
func Diapers(entries []classifier.Entry) ([]model.Diaper, error) {
	out := make([]model.Diaper, 0, len(entries))
	var prev time.Time
	for _, e := range entries {
		r := e.Record
		pee := extract(peeRe, r.EndCondition)
		poo := extract(pooRe, r.EndCondition)

		var kind string
		switch {
		case pee != nil && poo != nil:
			kind = model.DiaperBoth
		case pee != nil:
			kind = model.DiaperPeeOnly
		case poo != nil:
			kind = model.DiaperPooOnly
		default:
			return nil, errs.MalformedInput(r.Line, "End Condition", r.EndCondition, "diaper names neither pee nor poo")
		}

		out = append(out, model.Diaper{
			Instant:            r.Instant,
			AgeInDays:          r.AgeInDays,
			Color:              optional(r.Duration),
			Kind:               kind,
			PeeSize:            pee,
			PooSize:            poo,
			TimeSinceLastHours: HoursSince(prev, r.Instant),
			Notes:              r.NotesOrNil(),
		})
		prev = r.Instant
	}
	return out, nil
}

func extract(re *regexp.Regexp, s string) *string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	return &m[1]
}
