package testdata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
)

//go:embed export.csv
var exportCSV []byte

//go:embed expected.json
var expectedJSON []byte

// Session is the expected shape of one merged sleep session.
type Session struct {
	Start    string `json:"start"`
	Logs     int    `json:"logs"`
	Duration int    `json:"duration"`
	Period   string `json:"period"`
}

// Expected describes what deriving the sample export must produce.
type Expected struct {
	Birth         string         `json:"birth"`
	Timezone      string         `json:"timezone"`
	Rows          int            `json:"rows"`
	Skipped       map[string]int `json:"skipped"`
	Bottles       int            `json:"bottles"`
	NightBottles  int            `json:"night_bottles"`
	BottleGaps    []float64      `json:"bottle_gaps"`
	Pumps         int            `json:"pumps"`
	PumpTotals    []int          `json:"pump_totals"`
	Diapers       int            `json:"diapers"`
	DiaperKinds   []string       `json:"diaper_kinds"`
	SleepLogs     int            `json:"sleep_logs"`
	SleepSessions []Session      `json:"sleep_sessions"`
}

// Export returns a reader over the sample two-day export, rows deliberately
// out of chronological order.
func Export() io.Reader {
	return bytes.NewReader(exportCSV)
}

// LoadExpected parses the embedded expected.json.
func LoadExpected() (Expected, error) {
	var e Expected
	if err := json.Unmarshal(expectedJSON, &e); err != nil {
		return Expected{}, fmt.Errorf("parse expected.json: %w", err)
	}
	return e, nil
}
