// Package calendar writes events to an iCalendar file, one VEVENT each.
package calendar

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/crimson-sun/babylog/internal/model"
)

const (
	prodID   = "-//babylog//events//EN"
	calName  = "babylog"
	uidHost  = "babylog"
	stubFile = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + prodID + "\r\nEND:VCALENDAR\r\n"
)

// uidSpace namespaces event UIDs so the same event always gets the same UID
// and calendar apps update it on re-import instead of duplicating it.
var uidSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/crimson-sun/babylog"))

// Output collects events and writes the calendar file on Close.
type Output struct {
	mu     sync.Mutex
	path   string
	now    func() time.Time
	events []*ical.Event
}

// New creates a calendar output writing to path.
func New(path string) *Output {
	return &Output{path: path, now: time.Now}
}

func (o *Output) Write(_ context.Context, event model.Event) error {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, UID(event))
	ev.Props.SetText(ical.PropSummary, Summary(event))
	if desc := describe(event.Properties); desc != "" {
		ev.Props.SetText(ical.PropDescription, desc)
	}

	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(o.now().UTC())
	ev.Props.Set(stamp)

	start := ical.NewProp(ical.PropDateTimeStart)
	start.SetDateTime(event.Timestamp.UTC())
	ev.Props.Set(start)

	end := ical.NewProp(ical.PropDateTimeEnd)
	end.SetDateTime(event.Timestamp.Add(span(event)).UTC())
	ev.Props.Set(end)

	o.mu.Lock()
	o.events = append(o.events, ev)
	o.mu.Unlock()
	return nil
}

// Close encodes every collected event and writes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var buf bytes.Buffer
	if len(o.events) == 0 {
		buf.WriteString(stubFile)
	} else {
		cal := ical.NewCalendar()
		cal.Props.SetText(ical.PropVersion, "2.0")
		cal.Props.SetText(ical.PropProductID, prodID)
		cal.Props.SetText("X-WR-CALNAME", calName)
		cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
		for _, ev := range o.events {
			cal.Children = append(cal.Children, ev.Component)
		}
		if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
			return fmt.Errorf("calendar output: encode: %w", err)
		}
	}
	if err := os.WriteFile(o.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("calendar output: write %s: %w", o.path, err)
	}
	slog.Debug("calendar written", "path", o.path, "events", len(o.events))
	return nil
}

// UID derives a stable identifier from the event's name, subject and time.
func UID(event model.Event) string {
	key := event.Name + "|" + event.DistinctID + "|" + event.Timestamp.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uidSpace, []byte(key)).String() + "@" + uidHost
}

// Summary is the one-line title shown in calendar apps.
func Summary(event model.Event) string {
	p := event.Properties
	switch event.Name {
	case "Bottle Feed":
		return fmt.Sprintf("Bottle %v ml (%v)", value(p, "Amount"), value(p, "Type"))
	case "Pump":
		return fmt.Sprintf("Pump %v ml", value(p, "Total"))
	case "Diaper":
		return fmt.Sprintf("Diaper: %v", value(p, "Type"))
	case "Sleep":
		return fmt.Sprintf("%v sleep, %v min", value(p, "Type"), value(p, "Duration"))
	}
	return event.Name
}

// span is how long the event lasts on the calendar: the Duration property
// in minutes when present.
func span(event model.Event) time.Duration {
	v, ok := event.Properties.Get("Duration")
	if !ok {
		return 0
	}
	if mins, ok := v.(int); ok && mins > 0 {
		return time.Duration(mins) * time.Minute
	}
	return 0
}

func describe(props model.Properties) string {
	var b strings.Builder
	for _, p := range props {
		if p.Value == nil || p.Key == "timestamp" {
			continue
		}
		fmt.Fprintf(&b, "%s: %v\n", p.Key, p.Value)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func value(p model.Properties, key string) any {
	v, _ := p.Get(key)
	if v == nil {
		return "?"
	}
	return v
}
