package classifier

import (
	"strings"

	"github.com/crimson-sun/babylog/internal/model"
)

// Export discriminant values.
const (
	TypeFeed   = "Feed"
	TypePump   = "Pump"
	TypeDiaper = "Diaper"
	TypeSleep  = "Sleep"

	LocationBottle = "Bottle"
)

// Entry is a record kept by the partition, with its position in the
// globally sorted record slice.
type Entry struct {
	Index  int
	Record model.Record
}

// Partition holds the four disjoint category subsets, each in input order.
type Partition struct {
	Bottles []Entry
	Pumps   []Entry
	Diapers []Entry
	Sleeps  []Entry

	// Skipped counts records matching no category, keyed by Type
	// (and StartLocation for feeds).
	Skipped map[string]int
}

// Len returns the number of records in the given category.
func (p Partition) Len(c model.Category) int {
	switch c {
	case model.CategoryBottle:
		return len(p.Bottles)
	case model.CategoryPump:
		return len(p.Pumps)
	case model.CategoryDiaper:
		return len(p.Diapers)
	case model.CategorySleep:
		return len(p.Sleeps)
	}
	return 0
}

// Classify returns the category of a single record, or false when the
// record belongs to none (nursing, breast feeds, unknown types).
func Classify(r model.RawRecord) (model.Category, bool) {
	switch strings.TrimSpace(r.Type) {
	case TypeFeed:
		if strings.TrimSpace(r.StartLocation) == LocationBottle {
			return model.CategoryBottle, true
		}
	case TypePump:
		return model.CategoryPump, true
	case TypeDiaper:
		return model.CategoryDiaper, true
	case TypeSleep:
		return model.CategorySleep, true
	}
	return "", false
}

// Split partitions records by category. Order within each category follows
// the input order, so callers must sort records before splitting.
func Split(records []model.Record) Partition {
	p := Partition{Skipped: map[string]int{}}
	for i, r := range records {
		c, ok := Classify(r.RawRecord)
		if !ok {
			p.Skipped[skipKey(r.RawRecord)]++
			continue
		}
		e := Entry{Index: i, Record: r}
		switch c {
		case model.CategoryBottle:
			p.Bottles = append(p.Bottles, e)
		case model.CategoryPump:
			p.Pumps = append(p.Pumps, e)
		case model.CategoryDiaper:
			p.Diapers = append(p.Diapers, e)
		case model.CategorySleep:
			p.Sleeps = append(p.Sleeps, e)
		}
	}
	return p
}

func skipKey(r model.RawRecord) string {
	typ := strings.TrimSpace(r.Type)
	if typ == "" {
		typ = "(empty)"
	}
	if typ == TypeFeed {
		loc := strings.TrimSpace(r.StartLocation)
		if loc == "" {
			loc = "(empty)"
		}
		return typ + "/" + loc
	}
	return typ
}
