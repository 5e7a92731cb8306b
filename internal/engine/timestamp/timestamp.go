// Package timestamp localizes naive export timestamps and computes the
// subject's age in days.
package timestamp

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// layouts are the naive date-time forms the export is known to produce.
var layouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

const day = 24 * time.Hour

// Normalizer converts naive local timestamps into instants in one fixed zone.
type Normalizer struct {
	loc   *time.Location
	birth time.Time
}

// New creates a Normalizer for the named IANA zone. birth is a naive
// date or date-time in the same zone.
func New(zone, birth string) (*Normalizer, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("timestamp: load zone %q: %w", zone, err)
	}
	n := &Normalizer{loc: loc}
	b, err := n.Parse(birth)
	if err != nil {
		return nil, fmt.Errorf("timestamp: birth: %w", err)
	}
	n.birth = b
	return n, nil
}

// Location returns the zone all instants are expressed in.
func (n *Normalizer) Location() *time.Location { return n.loc }

// Parse localizes a naive timestamp. Wall times that occur twice at a DST
// fall-back resolve to the earlier instant; wall times skipped at a
// spring-forward transition move forward by the size of the gap.
func (n *Normalizer) Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var (
		wall time.Time
		err  error
	)
	for _, layout := range layouts {
		wall, err = time.Parse(layout, s)
		if err == nil {
			return n.localize(wall), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date-time %q", s)
}

// AgeInDays returns the number of whole 24h periods between birth and t,
// rounded toward negative infinity.
func (n *Normalizer) AgeInDays(t time.Time) int {
	return FloorDays(t.Sub(n.birth))
}

// FloorDays converts a duration to whole days, rounding down.
func FloorDays(d time.Duration) int {
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// localize interprets wall (parsed as UTC) as a wall clock reading in n.loc.
func (n *Normalizer) localize(wall time.Time) time.Time {
	y, mo, d := wall.Date()
	h, mi, sec := wall.Clock()
	t := time.Date(y, mo, d, h, mi, sec, 0, n.loc)

	// The offsets in effect half a day either side bracket any transition
	// that could make this wall time ambiguous.
	_, before := t.Add(-12 * time.Hour).Zone()
	_, after := t.Add(12 * time.Hour).Zone()
	if before == after {
		return t
	}

	var match []time.Time
	for _, off := range []int{before, after} {
		c := wall.Add(-time.Duration(off) * time.Second).In(n.loc)
		if sameWall(c, wall) {
			match = append(match, c)
		}
	}
	switch len(match) {
	case 0:
		slog.Debug("non-existent local time shifted forward", "wall", wall.Format("2006-01-02 15:04:05"), "zone", n.loc.String())
		return wall.Add(-time.Duration(before) * time.Second).In(n.loc)
	case 2:
		slog.Debug("ambiguous local time resolved to earlier instant", "wall", wall.Format("2006-01-02 15:04:05"), "zone", n.loc.String())
		if match[1].Before(match[0]) {
			return match[1]
		}
	}
	return match[0]
}

func sameWall(t, wall time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := wall.Date()
	h1, i1, s1 := t.Clock()
	h2, i2, s2 := wall.Clock()
	return y1 == y2 && m1 == m2 && d1 == d2 && h1 == h2 && i1 == i2 && s1 == s2
}
