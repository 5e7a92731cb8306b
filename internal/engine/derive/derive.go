// Package derive maps classified export rows onto typed category records
// and computes the per-category metrics.
package derive

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/babylog/internal/errs"
)

var (
	volumeRe   = regexp.MustCompile(`^(\d+)\s*(?i:ml)?$`)
	durationRe = regexp.MustCompile(`^(\d+):(\d{1,2})$`)
)

// ParseVolume reads a millilitre amount such as "120ml", "90 ml" or "90ML".
// A bare integer is accepted as millilitres.
func ParseVolume(line int, field, s string) (int, error) {
	v := strings.TrimSpace(s)
	m := volumeRe.FindStringSubmatch(v)
	if m == nil {
		return 0, errs.MalformedInput(line, field, s, "volume must be a whole number of ml")
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, errs.WrapMalformed(line, field, s, err)
	}
	return n, nil
}

// ParseDuration reads an "H:MM" duration in minutes. Empty means 0.
// MM must be 00 to 59.
func ParseDuration(line int, field, s string) (int, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, nil
	}
	m := durationRe.FindStringSubmatch(v)
	if m == nil {
		return 0, errs.MalformedInput(line, field, s, `duration must be "H:MM"`)
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if mins >= 60 {
		return 0, errs.MalformedInput(line, field, s, "duration minutes must be below 60")
	}
	return h*60 + mins, nil
}

// HoursSince returns the gap from prev to cur in hours, rounded to three
// decimals. The zero prev yields 0.
func HoursSince(prev, cur time.Time) float64 {
	if prev.IsZero() {
		return 0
	}
	return Round3(cur.Sub(prev).Hours())
}

// Round3 rounds to three decimal places, half away from zero.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
