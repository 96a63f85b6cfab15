// Package loader reads per-instrument raw records and normalizes them into
// one observation per trade date.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"TrendBand/internal/domain/models"
	domrepo "TrendBand/internal/domain/repository"
	applogger "TrendBand/pkg/logger"
)

// Loader turns a RecordSource into normalized observations.
type Loader struct {
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func New(metrics domrepo.Metrics, l *applogger.Logger) *Loader {
	return &Loader{metrics: metrics, l: l}
}

// Load fetches, reports dropped rows, and normalizes one instrument's source.
// A fetch failure is returned wrapped around models.ErrSourceUnavailable so
// the caller can skip the instrument without aborting the pass.
func (ld *Loader) Load(ctx context.Context, src domrepo.RecordSource) ([]models.Observation, error) {
	instrument := src.Instrument()

	records, droppedRows, err := src.Fetch(ctx)
	if err != nil {
		if ld.metrics != nil {
			ld.metrics.RecordSourceError(instrument)
		}
		if errors.Is(err, models.ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, instrument, err)
	}

	for _, d := range droppedRows {
		if ld.l != nil {
			ld.l.Warn("row dropped",
				applogger.String("instrument", d.Instrument),
				applogger.Int("line", d.Line),
				applogger.String("reason", d.Reason),
			)
		}
	}
	if ld.metrics != nil {
		ld.metrics.RecordRowsDropped(instrument, len(droppedRows))
		ld.metrics.RecordRowsLoaded(instrument, len(records))
	}

	return Normalize(instrument, records), nil
}

// Normalize deduplicates same-day rows and tags records with the instrument
// identifier. When several rows share a trade date, candidates are ordered by
// expiry ascending and the first one wins. The result is chronological.
func Normalize(instrument string, records []models.RawRecord) []models.Observation {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]models.RawRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].Expiry < sorted[j].Expiry
	})

	out := make([]models.Observation, 0, len(sorted))
	for _, rec := range sorted {
		if n := len(out); n > 0 && out[n-1].Date.Equal(rec.Date) {
			continue
		}
		out = append(out, models.Observation{
			Instrument: instrument,
			Date:       rec.Date,
			Close:      rec.Close,
		})
	}
	return out
}
