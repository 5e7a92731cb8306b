package merge

import (
	"testing"
	"time"

	"github.com/crimson-sun/babylog/internal/model"
)

var day = time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

func at(hhmmss string) time.Time {
	t, err := time.Parse("15:04:05", hhmmss)
	if err != nil {
		panic(err)
	}
	return day.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second)
}

func sleepLog(start, end string, age int) model.SleepLog {
	s, e := at(start), at(end)
	return model.SleepLog{Start: s, End: e, DurationMinutes: int(e.Sub(s) / time.Minute), AgeInDays: age}
}

func note(s string) *string { return &s }

func TestMergeBatchEmpty(t *testing.T) {
	m := New(Config{})
	if got := m.MergeBatch(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMergeBatchSingle(t *testing.T) {
	m := New(Config{})
	got := m.MergeBatch([]model.SleepLog{sleepLog("13:00:00", "14:10:00", 3)})
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	s := got[0]
	if s.LogCount != 1 || s.DurationMinutes != 70 || s.TimeSinceLastHours != 0 || s.Period != model.PeriodDay {
		t.Fatalf("unexpected session %+v", s)
	}
	if s.Notes != nil {
		t.Fatalf("expected nil notes, got %q", *s.Notes)
	}
}

func TestMergeBatchGapBoundary(t *testing.T) {
	m := New(Config{})

	joined := m.MergeBatch([]model.SleepLog{
		sleepLog("07:30:00", "08:00:00", 1),
		sleepLog("08:10:00", "09:00:00", 1),
	})
	if len(joined) != 1 {
		t.Fatalf("gap of exactly 10m should merge, got %d sessions", len(joined))
	}
	if joined[0].DurationMinutes != 90 {
		t.Fatalf("expected 90 minutes, got %d", joined[0].DurationMinutes)
	}

	split := m.MergeBatch([]model.SleepLog{
		sleepLog("07:30:00", "08:00:00", 1),
		sleepLog("08:10:01", "09:00:00", 1),
	})
	if len(split) != 2 {
		t.Fatalf("gap of 10m1s should not merge, got %d sessions", len(split))
	}
}

func TestMergeBatchEndToEnd(t *testing.T) {
	m := New(Config{})
	got := m.MergeBatch([]model.SleepLog{
		sleepLog("22:00:00", "22:30:00", 5),
		sleepLog("22:35:00", "23:00:00", 5),
		sleepLog("23:20:00", "23:40:00", 5),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(got))
	}

	first, second := got[0], got[1]
	if !first.Start.Equal(at("22:00:00")) || !first.End.Equal(at("23:00:00")) || first.LogCount != 2 {
		t.Fatalf("unexpected first session %+v", first)
	}
	if first.DurationMinutes != 60 {
		t.Fatalf("expected 60 minutes, got %d", first.DurationMinutes)
	}
	if !second.Start.Equal(at("23:20:00")) || !second.End.Equal(at("23:40:00")) || second.LogCount != 1 {
		t.Fatalf("unexpected second session %+v", second)
	}
	if second.TimeSinceLastHours != 1.333 {
		t.Fatalf("expected 1.333h since last, got %v", second.TimeSinceLastHours)
	}
	if first.Period != model.PeriodNight || second.Period != model.PeriodNight {
		t.Fatalf("late evening sessions should be Night")
	}
}

func TestMergeBatchRunningEnd(t *testing.T) {
	m := New(Config{})
	// The short log sits inside the long one; the third log's gap is
	// measured from the long log's end, not the short log's.
	got := m.MergeBatch([]model.SleepLog{
		sleepLog("12:00:00", "14:00:00", 2),
		sleepLog("12:30:00", "12:45:00", 2),
		sleepLog("14:05:00", "14:30:00", 2),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].LogCount != 3 || !got[0].End.Equal(at("14:30:00")) || got[0].DurationMinutes != 150 {
		t.Fatalf("unexpected session %+v", got[0])
	}
}

func TestMergeBatchMinAgeAndNotes(t *testing.T) {
	m := New(Config{})
	a := sleepLog("23:50:00", "23:58:00", 4)
	a.Notes = note("rocked")
	b := sleepLog("23:59:00", "23:59:30", 3)
	c := sleepLog("23:59:40", "23:59:50", 5)
	c.Notes = note("white noise")

	got := m.MergeBatch([]model.SleepLog{a, b, c})
	if len(got) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got))
	}
	if got[0].AgeInDays != 3 {
		t.Fatalf("expected min age 3, got %d", got[0].AgeInDays)
	}
	if got[0].Notes == nil || *got[0].Notes != "rocked; white noise" {
		t.Fatalf("unexpected notes %v", got[0].Notes)
	}
}

func TestMergeBatchIdempotent(t *testing.T) {
	m := New(Config{})
	once := m.MergeBatch([]model.SleepLog{
		sleepLog("01:00:00", "02:00:00", 1),
		sleepLog("02:05:00", "03:00:00", 1),
		sleepLog("09:00:00", "10:00:00", 1),
		sleepLog("13:00:00", "14:00:00", 1),
		sleepLog("14:00:00", "14:20:00", 1),
		sleepLog("20:00:00", "23:00:00", 1),
	})
	twice := m.MergeBatch(AsLogs(once))
	if len(once) != len(twice) {
		t.Fatalf("second merge changed session count: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		a, b := once[i], twice[i]
		if !a.Start.Equal(b.Start) || !a.End.Equal(b.End) || a.DurationMinutes != b.DurationMinutes ||
			a.AgeInDays != b.AgeInDays || a.Period != b.Period || a.TimeSinceLastHours != b.TimeSinceLastHours {
			t.Fatalf("session %d changed: %+v -> %+v", i, a, b)
		}
	}
}

func TestPeriodBoundaries(t *testing.T) {
	m := New(Config{})
	tests := []struct {
		start, end string
		want       string
	}{
		{"07:00:00", "07:40:00", model.PeriodNight},
		{"08:00:00", "09:00:00", model.PeriodDay},
		{"08:00:00", "18:59:00", model.PeriodDay},
		{"18:00:00", "19:00:00", model.PeriodNight},
		{"06:00:00", "08:30:00", model.PeriodNight},
		{"07:59:00", "08:30:00", model.PeriodNight},
	}
	for _, tt := range tests {
		if got := m.Period(at(tt.start), at(tt.end)); got != tt.want {
			t.Errorf("Period(%s, %s) = %s, want %s", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestConfigurableGap(t *testing.T) {
	m := New(Config{MaxGap: 30 * time.Minute})
	got := m.MergeBatch([]model.SleepLog{
		sleepLog("10:00:00", "10:30:00", 1),
		sleepLog("10:55:00", "11:30:00", 1),
	})
	if len(got) != 1 {
		t.Fatalf("expected 1 session with 30m gap, got %d", len(got))
	}
}
