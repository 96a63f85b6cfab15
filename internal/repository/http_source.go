package repository

import (
	"bytes"
	"context"
	"fmt"

	"TrendBand/internal/domain/models"
	domrepo "TrendBand/internal/domain/repository"
	"TrendBand/internal/loader"
	xhttp "TrendBand/pkg/http"
)

// HTTPSource downloads one instrument's records as CSV from a remote endpoint.
type HTTPSource struct {
	instrument string
	url        string
	client     *xhttp.Client
}

func NewHTTPSource(instrument, url string, client *xhttp.Client) *HTTPSource {
	return &HTTPSource{instrument: instrument, url: url, client: client}
}

func (s *HTTPSource) Instrument() string { return s.instrument }

func (s *HTTPSource) Fetch(ctx context.Context) ([]models.RawRecord, []*models.MalformedRecordError, error) {
	var body []byte
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.url,
		Headers: map[string]string{
			"Accept": "text/csv",
		},
	}, &body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, s.url, err)
	}

	records, dropped, err := loader.ParseCSV(s.instrument, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", models.ErrSourceUnavailable, s.url, err)
	}
	return records, dropped, nil
}

var _ domrepo.RecordSource = (*HTTPSource)(nil)
