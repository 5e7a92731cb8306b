package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNY(t *testing.T, birth string) *Normalizer {
	t.Helper()
	n, err := New("America/New_York", birth)
	require.NoError(t, err)
	return n
}

func TestParseLayouts(t *testing.T) {
	n := newNY(t, "2024-05-01")
	loc := n.Location()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-03 22:15:30", time.Date(2024, 5, 3, 22, 15, 30, 0, loc)},
		{"2024-05-03 22:15", time.Date(2024, 5, 3, 22, 15, 0, 0, loc)},
		{"2024-05-03T22:15:30", time.Date(2024, 5, 3, 22, 15, 30, 0, loc)},
		{"2024-05-03T22:15", time.Date(2024, 5, 3, 22, 15, 0, 0, loc)},
		{" 2024-05-03 ", time.Date(2024, 5, 3, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		got, err := n.Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "Parse(%q) = %v, want %v", tt.in, got, tt.want)
		assert.Equal(t, loc, got.Location())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	n := newNY(t, "2024-05-01")
	for _, in := range []string{"", "yesterday", "05/03/2024 10:00", "2024-05-03 25:00"} {
		_, err := n.Parse(in)
		assert.Error(t, err, in)
	}
}

func TestNewRejectsBadZoneAndBirth(t *testing.T) {
	_, err := New("Mars/Olympus_Mons", "2024-05-01")
	assert.Error(t, err)

	_, err = New("America/New_York", "first of May")
	assert.Error(t, err)
}

func TestAmbiguousTimeResolvesEarlier(t *testing.T) {
	n := newNY(t, "2024-05-01")

	// 01:30 happens twice on 2024-11-03 in New York: first EDT, then EST.
	got, err := n.Parse("2024-11-03 01:30")
	require.NoError(t, err)
	want := time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC)
	assert.True(t, got.Equal(want), "got %v, want %v", got.UTC(), want)
	_, off := got.Zone()
	assert.Equal(t, -4*3600, off)
}

func TestNonExistentTimeShiftsForward(t *testing.T) {
	n := newNY(t, "2024-01-01")

	// 02:30 does not exist on 2024-03-10 in New York.
	got, err := n.Parse("2024-03-10 02:30")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Hour())
	assert.Equal(t, 30, got.Minute())
	assert.True(t, got.Equal(time.Date(2024, 3, 10, 7, 30, 0, 0, time.UTC)))
}

func TestAgeInDays(t *testing.T) {
	n := newNY(t, "2024-05-01 08:00")

	tests := []struct {
		at   string
		want int
	}{
		{"2024-05-01 08:00", 0},
		{"2024-05-02 07:59", 0},
		{"2024-05-02 08:00", 1},
		{"2024-05-11 23:00", 10},
		{"2024-05-01 07:59", -1},
		{"2024-04-29 08:00", -2},
	}
	for _, tt := range tests {
		at, err := n.Parse(tt.at)
		require.NoError(t, err)
		assert.Equal(t, tt.want, n.AgeInDays(at), tt.at)
	}
}

func TestFloorDays(t *testing.T) {
	assert.Equal(t, 0, FloorDays(0))
	assert.Equal(t, 1, FloorDays(36*time.Hour))
	assert.Equal(t, -1, FloorDays(-time.Minute))
	assert.Equal(t, -1, FloorDays(-24*time.Hour))
	assert.Equal(t, -2, FloorDays(-25*time.Hour))
}
