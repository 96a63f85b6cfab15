package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"TrendBand/internal/domain/models"
	domrepo "TrendBand/internal/domain/repository"
	"TrendBand/pkg/clickhouse"
	"TrendBand/pkg/util"
)

// ClickHouseSource reads one instrument's records from a ClickHouse table.
// The table is expected to carry (instrument, trade_date, expiry, close)
// columns; bad rows are dropped the same way the CSV path drops them.
type ClickHouseSource struct {
	instrument string
	table      string
	client     *clickhouse.Client
}

func NewClickHouseSource(instrument, table string, client *clickhouse.Client) *ClickHouseSource {
	return &ClickHouseSource{instrument: instrument, table: table, client: client}
}

func (s *ClickHouseSource) Instrument() string { return s.instrument }

func (s *ClickHouseSource) Fetch(ctx context.Context) ([]models.RawRecord, []*models.MalformedRecordError, error) {
	query := fmt.Sprintf(
		"SELECT trade_date, expiry, close FROM %s WHERE instrument = ? ORDER BY trade_date, expiry",
		s.table,
	)

	rows, err := s.client.DB().QueryContext(ctx, query, s.instrument)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, s.table, err)
	}
	defer rows.Close()

	var (
		records []models.RawRecord
		dropped []*models.MalformedRecordError
		line    int
	)
	for rows.Next() {
		line++
		var (
			date    time.Time
			expiry  string
			closePx float64
		)
		if err := rows.Scan(&date, &expiry, &closePx); err != nil {
			dropped = append(dropped, &models.MalformedRecordError{
				Instrument: s.instrument,
				Line:       line,
				Reason:     fmt.Sprintf("scan: %v", err),
			})
			continue
		}
		if closePx <= 0 {
			dropped = append(dropped, &models.MalformedRecordError{
				Instrument: s.instrument,
				Line:       line,
				Reason:     fmt.Sprintf("non-positive close %v", closePx),
			})
			continue
		}
		records = append(records, models.RawRecord{
			Date:   util.Day(date),
			Expiry: expiry,
			Close:  decimal.NewFromFloat(closePx),
			Line:   line,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, s.table, err)
	}

	return records, dropped, nil
}

var _ domrepo.RecordSource = (*ClickHouseSource)(nil)
