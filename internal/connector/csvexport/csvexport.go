// Package csvexport reads the baby tracker's CSV export.
package csvexport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/crimson-sun/babylog/internal/connector"
	"github.com/crimson-sun/babylog/internal/errs"
	"github.com/crimson-sun/babylog/internal/model"
)

// Export column names.
const (
	ColStart          = "Start"
	ColEnd            = "End"
	ColType           = "Type"
	ColStartLocation  = "Start Location"
	ColStartCondition = "Start Condition"
	ColEndCondition   = "End Condition"
	ColDuration       = "Duration"
	ColNotes          = "Notes"
)

// Columns lists every column the export must carry.
var Columns = []string{ColStart, ColEnd, ColType, ColStartLocation, ColStartCondition, ColEndCondition, ColDuration, ColNotes}

func init() {
	connector.Register("csv", func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector for a CSV file on disk.
// cfg.Extra["comma"] overrides the field delimiter.
type Connector struct{}

func (c *Connector) Load(ctx context.Context, cfg connector.ConnectorConfig) ([]model.RawRecord, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("csvexport: %w", err)
	}
	defer f.Close()

	comma := ','
	if s := cfg.Extra["comma"]; s != "" {
		r, size := utf8.DecodeRuneInString(s)
		if size != len(s) {
			return nil, errs.Configuration(fmt.Sprintf("csv delimiter must be a single character, got %q", s), nil)
		}
		comma = r
	}
	return read(ctx, f, comma)
}

// Read parses a comma-separated export. A leading byte order mark is
// dropped and text is normalized to NFC. Columns are matched by header
// name in any order; extra columns are ignored.
func Read(ctx context.Context, r io.Reader) ([]model.RawRecord, error) {
	return read(ctx, r, ',')
}

func read(ctx context.Context, r io.Reader, comma rune) ([]model.RawRecord, error) {
	src := transform.NewReader(r, transform.Chain(unicode.BOMOverride(transform.Nop), norm.NFC))
	cr := csv.NewReader(src)
	cr.Comma = comma
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errs.MalformedInput(0, "header", "", "export is empty")
	}
	if err != nil {
		return nil, errs.WrapMalformed(0, "header", "", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			return nil, errs.MalformedInput(0, "header", col, "missing required column "+col)
		}
	}

	var rows []model.RawRecord
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errs.WrapMalformed(line, "row", "", err)
		}
		get := func(col string) string {
			return strings.TrimSpace(rec[index[col]])
		}
		row := model.RawRecord{
			Line:           line,
			Type:           get(ColType),
			StartLocation:  get(ColStartLocation),
			Start:          get(ColStart),
			End:            get(ColEnd),
			Duration:       get(ColDuration),
			StartCondition: get(ColStartCondition),
			EndCondition:   get(ColEndCondition),
			Notes:          get(ColNotes),
		}
		if row.Start == "" {
			return nil, errs.MalformedInput(line, ColStart, "", "row has no start time")
		}
		rows = append(rows, row)
	}
	return rows, nil
}
