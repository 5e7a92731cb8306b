package babylog

import (
	"time"

	"github.com/crimson-sun/babylog/internal/model"
)

// Event is one analytics event, ready for a capture API.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Event struct {
	Name       string     `json:"event"`       // Bottle Feed, Pump, Diaper, Sleep
	DistinctID string     `json:"distinct_id"` // the subject id
	Timestamp  time.Time  `json:"timestamp"`   // record instant, session start for Sleep
	Properties Properties `json:"properties"`
}

// Property is a single key/value pair of an event. Absent optional values
// are nil.
type Property = model.Property

// Properties keeps event properties in their documented order and marshals
// to a JSON object with keys in that order.
type Properties = model.Properties

func eventFromModel(e model.Event) Event {
	return Event{
		Name:       e.Name,
		DistinctID: e.DistinctID,
		Timestamp:  e.Timestamp,
		Properties: e.Properties,
	}
}
