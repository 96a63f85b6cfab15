package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"TrendBand/internal/domain/models"
	"TrendBand/pkg/util"

	"github.com/shopspring/decimal"
)

// Column names expected in instrument exports. Header cells are
// whitespace-trimmed before matching, case-insensitive.
const (
	colDate   = "date"
	colExpiry = "expiry"
	colClose  = "close"
)

// ParseCSV reads one instrument's CSV export. Rows that cannot be parsed are
// dropped and reported individually; they never fail the whole source. A
// missing header or required column does fail the source.
func ParseCSV(instrument string, r io.Reader) ([]models.RawRecord, []*models.MalformedRecordError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	dateIdx, ok := idx[colDate]
	if !ok {
		return nil, nil, fmt.Errorf("missing %q column", colDate)
	}
	closeIdx, ok := idx[colClose]
	if !ok {
		return nil, nil, fmt.Errorf("missing %q column", colClose)
	}
	expiryIdx, hasExpiry := idx[colExpiry]

	var (
		records []models.RawRecord
		dropped []*models.MalformedRecordError
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			dropped = append(dropped, &models.MalformedRecordError{
				Instrument: instrument, Line: line, Reason: err.Error(),
			})
			continue
		}

		rec, perr := parseRow(instrument, row, line, dateIdx, closeIdx, expiryIdx, hasExpiry)
		if perr != nil {
			dropped = append(dropped, perr)
			continue
		}
		records = append(records, rec)
	}
	return records, dropped, nil
}

func parseRow(instrument string, row []string, line, dateIdx, closeIdx, expiryIdx int, hasExpiry bool) (models.RawRecord, *models.MalformedRecordError) {
	fail := func(reason string) (models.RawRecord, *models.MalformedRecordError) {
		return models.RawRecord{}, &models.MalformedRecordError{
			Instrument: instrument, Line: line, Reason: reason,
		}
	}

	if dateIdx >= len(row) || closeIdx >= len(row) {
		return fail("short row")
	}

	date, ok := util.ParseTradeDate(row[dateIdx])
	if !ok {
		return fail(fmt.Sprintf("bad date %q", strings.TrimSpace(row[dateIdx])))
	}

	closeStr := strings.TrimSpace(row[closeIdx])
	price, err := decimal.NewFromString(closeStr)
	if err != nil {
		return fail(fmt.Sprintf("bad close %q", closeStr))
	}
	if !price.IsPositive() {
		return fail(fmt.Sprintf("non-positive close %q", closeStr))
	}

	rec := models.RawRecord{Date: date, Close: price, Line: line}
	if hasExpiry && expiryIdx < len(row) {
		rec.Expiry = strings.TrimSpace(row[expiryIdx])
	}
	return rec, nil
}
