package model

import "time"

// Category identifies which derived record type a row becomes.
type Category string

const (
	CategoryBottle Category = "bottle"
	CategoryPump   Category = "pump"
	CategoryDiaper Category = "diaper"
	CategorySleep  Category = "sleep"
)

// Categories lists every category in emission order.
var Categories = []Category{CategoryBottle, CategoryPump, CategoryDiaper, CategorySleep}

// BottleFeed is a bottle feed with its amount and gap to the previous bottle.
type BottleFeed struct {
	Instant            time.Time
	AgeInDays          int
	AmountML           int
	FeedType           string // Breast Milk, Formula
	TimeSinceLastHours float64
	NightBottle        bool
	Notes              *string
}

// Pump is one pumping session with per-side volumes.
type Pump struct {
	Instant         time.Time
	AgeInDays       int
	LeftML          int
	RightML         int
	TotalML         int
	DurationMinutes int
	Notes           *string
}

// Diaper kinds.
const (
	DiaperBoth    = "Both"
	DiaperPeeOnly = "Pee only"
	DiaperPooOnly = "Poo only"
)

// Diaper is a diaper change with the sizes parsed from its description.
type Diaper struct {
	Instant            time.Time
	AgeInDays          int
	Color              *string
	Kind               string
	PeeSize            *string
	PooSize            *string
	TimeSinceLastHours float64
	Notes              *string
}

// SleepLog is a single logged sleep interval, before merging.
type SleepLog struct {
	Start           time.Time
	End             time.Time
	DurationMinutes int
	AgeInDays       int
	Notes           *string
}

// Sleep periods.
const (
	PeriodDay   = "Day"
	PeriodNight = "Night"
)

// SleepSession is one or more adjacent SleepLogs merged into a single span.
type SleepSession struct {
	Start              time.Time
	End                time.Time
	DurationMinutes    int
	AgeInDays          int // minimum over the merged logs
	LogCount           int
	TimeSinceLastHours float64
	Period             string
	Notes              *string
}
