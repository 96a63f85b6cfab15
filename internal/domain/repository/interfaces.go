package repository

import (
	"context"

	"TrendBand/internal/domain/models"
)

// RecordSource supplies the raw daily rows for one instrument. Fetch returns
// models.ErrSourceUnavailable (wrapped) when the backing file/endpoint/table
// cannot be read; the pipeline then skips the instrument instead of aborting.
// Individual bad rows are reported as dropped records, not errors.
type RecordSource interface {
	Instrument() string
	Fetch(ctx context.Context) ([]models.RawRecord, []*models.MalformedRecordError, error)
}

// SignalPublisher emits classified points to an external consumer after a
// completed pass. Implementations must be safe to call from a single
// goroutine at a time.
type SignalPublisher interface {
	PublishSignals(ctx context.Context, points []models.SeriesPoint) error
	Close() error
}

// Metrics records pipeline and source instrumentation.
type Metrics interface {
	RecordRowsLoaded(instrument string, n int)
	RecordRowsDropped(instrument string, n int)
	RecordSourceError(instrument string)
	RecordLastClose(instrument string, close float64)
	RecordSignals(signal string, n int)
	RecordPassDuration(seconds float64)
	RecordCacheEvent(event string)
}
