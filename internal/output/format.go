package output

import (
	"fmt"
	"strings"

	"github.com/crimson-sun/babylog/internal/model"
)

// Verbosity controls how much of an event local sinks record.
type Verbosity int

const (
	// Minimal drops properties whose value is null.
	Minimal Verbosity = iota
	// Standard keeps every property as delivered to the analytics sink.
	Standard
)

func (v Verbosity) String() string {
	switch v {
	case Minimal:
		return "minimal"
	case Standard:
		return "standard"
	default:
		return fmt.Sprintf("Verbosity(%d)", int(v))
	}
}

// ParseVerbosity maps a config string onto a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return Minimal, nil
	case "", "standard":
		return Standard, nil
	default:
		return Standard, fmt.Errorf("unknown verbosity %q", s)
	}
}

// FormatEvent returns a copy of the event with properties stripped
// according to verbosity. The input's property slice is never modified.
func FormatEvent(e model.Event, verbosity Verbosity) model.Event {
	if verbosity != Minimal {
		return e
	}
	kept := make(model.Properties, 0, len(e.Properties))
	for _, p := range e.Properties {
		if p.Value != nil {
			kept = append(kept, p)
		}
	}
	e.Properties = kept
	return e
}
