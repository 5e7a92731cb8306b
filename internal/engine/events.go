package engine

import (
	"time"

	"github.com/crimson-sun/babylog/internal/model"
)

// Event names as they appear in the analytics sink.
const (
	EventBottleFeed = "Bottle Feed"
	EventPump       = "Pump"
	EventDiaper     = "Diaper"
	EventSleep      = "Sleep"
)

// BottleEvent maps a bottle feed onto its analytics event.
func BottleEvent(subject string, r model.BottleFeed) model.Event {
	return newEvent(EventBottleFeed, subject, r.Instant, r.AgeInDays,
		model.Property{Key: "Amount", Value: r.AmountML},
		model.Property{Key: "Type", Value: r.FeedType},
		model.Property{Key: "Time Since Last", Value: r.TimeSinceLastHours},
		model.Property{Key: "Is Night Bottle", Value: r.NightBottle},
		model.Property{Key: "Notes", Value: nullable(r.Notes)},
	)
}

// PumpEvent maps a pumping session onto its analytics event.
func PumpEvent(subject string, r model.Pump) model.Event {
	return newEvent(EventPump, subject, r.Instant, r.AgeInDays,
		model.Property{Key: "Left", Value: r.LeftML},
		model.Property{Key: "Right", Value: r.RightML},
		model.Property{Key: "Total", Value: r.TotalML},
		model.Property{Key: "Duration", Value: r.DurationMinutes},
		model.Property{Key: "Notes", Value: nullable(r.Notes)},
	)
}

// DiaperEvent maps a diaper change onto its analytics event.
func DiaperEvent(subject string, r model.Diaper) model.Event {
	return newEvent(EventDiaper, subject, r.Instant, r.AgeInDays,
		model.Property{Key: "Color", Value: nullable(r.Color)},
		model.Property{Key: "Type", Value: r.Kind},
		model.Property{Key: "Pee Size", Value: nullable(r.PeeSize)},
		model.Property{Key: "Poo Size", Value: nullable(r.PooSize)},
		model.Property{Key: "Time Since Last", Value: r.TimeSinceLastHours},
		model.Property{Key: "Notes", Value: nullable(r.Notes)},
	)
}

// SleepEvent maps a merged sleep session onto its analytics event,
// timestamped at the session start.
func SleepEvent(subject string, r model.SleepSession) model.Event {
	return newEvent(EventSleep, subject, r.Start, r.AgeInDays,
		model.Property{Key: "Duration", Value: r.DurationMinutes},
		model.Property{Key: "Type", Value: r.Period},
		model.Property{Key: "Num_Logs", Value: r.LogCount},
		model.Property{Key: "Time Since Last", Value: r.TimeSinceLastHours},
		model.Property{Key: "Notes", Value: nullable(r.Notes)},
	)
}

func newEvent(name, subject string, at time.Time, age int, props ...model.Property) model.Event {
	p := make(model.Properties, 0, len(props)+2)
	p = append(p,
		model.Property{Key: "timestamp", Value: at.Format(time.RFC3339)},
		model.Property{Key: "DOL", Value: age},
	)
	p = append(p, props...)
	return model.Event{
		Name:       name,
		DistinctID: subject,
		Timestamp:  at,
		Properties: p,
	}
}

// nullable turns an absent optional value into an untyped nil so it
// marshals to null and compares equal to nil.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
