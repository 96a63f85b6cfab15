package repository

import (
	"context"
	"fmt"
	"os"

	"TrendBand/internal/domain/models"
	domrepo "TrendBand/internal/domain/repository"
	"TrendBand/internal/loader"
)

// FileSource reads one instrument's records from a CSV file on disk.
type FileSource struct {
	instrument string
	path       string
}

func NewFileSource(instrument, path string) *FileSource {
	return &FileSource{instrument: instrument, path: path}
}

func (s *FileSource) Instrument() string { return s.instrument }

func (s *FileSource) Fetch(_ context.Context) ([]models.RawRecord, []*models.MalformedRecordError, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	records, dropped, err := loader.ParseCSV(s.instrument, f)
	if err != nil {
		// unreadable structure (no header / missing columns) counts as
		// an unavailable source, not a malformed record
		return nil, nil, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, s.path, err)
	}
	return records, dropped, nil
}

var _ domrepo.RecordSource = (*FileSource)(nil)
