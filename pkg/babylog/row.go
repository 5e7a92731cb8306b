package babylog

import "github.com/crimson-sun/babylog/internal/model"

// Row is one line of the export, columns by name. Start is a naive local
// date-time such as "2024-05-03 22:15".
type Row struct {
	Type           string
	Start          string
	End            string
	Duration       string
	StartLocation  string
	StartCondition string
	EndCondition   string
	Notes          string
}

func (r Row) raw(line int) model.RawRecord {
	return model.RawRecord{
		Line:           line,
		Type:           r.Type,
		StartLocation:  r.StartLocation,
		Start:          r.Start,
		End:            r.End,
		Duration:       r.Duration,
		StartCondition: r.StartCondition,
		EndCondition:   r.EndCondition,
		Notes:          r.Notes,
	}
}
