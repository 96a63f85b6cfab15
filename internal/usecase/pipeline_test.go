package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"TrendBand/internal/domain/models"
	domrepo "TrendBand/internal/domain/repository"
	"TrendBand/internal/loader"
	"TrendBand/pkg/cache"
	applogger "TrendBand/pkg/logger"
)

type stubSource struct {
	name   string
	closes []float64
	err    error
}

func (s *stubSource) Instrument() string { return s.name }

func (s *stubSource) Fetch(context.Context) ([]models.RawRecord, []*models.MalformedRecordError, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	records := make([]models.RawRecord, len(s.closes))
	for i, c := range s.closes {
		records[i] = models.RawRecord{
			Date:  time.Date(2025, time.July, 1+i, 0, 0, 0, 0, time.UTC),
			Close: decimal.NewFromFloat(c),
		}
	}
	return records, nil, nil
}

type countingMetrics struct {
	cacheEvents map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{cacheEvents: make(map[string]int)}
}

func (m *countingMetrics) RecordRowsLoaded(string, int)    {}
func (m *countingMetrics) RecordRowsDropped(string, int)   {}
func (m *countingMetrics) RecordSourceError(string)        {}
func (m *countingMetrics) RecordLastClose(string, float64) {}
func (m *countingMetrics) RecordSignals(string, int)       {}
func (m *countingMetrics) RecordPassDuration(float64)      {}
func (m *countingMetrics) RecordCacheEvent(event string)   { m.cacheEvents[event]++ }

var _ domrepo.Metrics = (*countingMetrics)(nil)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestPipeline(t *testing.T, results cache.BytesCache, m domrepo.Metrics, sources ...domrepo.RecordSource) *Pipeline {
	t.Helper()
	l := testLogger(t)
	return NewPipeline(sources, loader.New(m, l), nil, results, m, l, Options{
		Window:         10,
		BandMultiplier: 1.0,
	})
}

func TestPipelineRunGroupsByInstrument(t *testing.T) {
	p := newTestPipeline(t, nil, newCountingMetrics(),
		&stubSource{name: "NTPC", closes: []float64{360, 361, 362}},
		&stubSource{name: "DLF", closes: []float64{840, 841}},
	)

	ds, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ds.Points) != 5 {
		t.Fatalf("points = %d, want 5", len(ds.Points))
	}

	instruments := ds.Instruments()
	if len(instruments) != 2 || instruments[0] != "DLF" || instruments[1] != "NTPC" {
		t.Fatalf("instruments = %v", instruments)
	}

	// first point of every instrument sits in the warm-up region
	for _, name := range instruments {
		series := ds.Series(name)
		if series[0].Stats.Defined {
			t.Errorf("%s first point should have undefined stddev", name)
		}
		if series[0].Signal != models.SignalHold {
			t.Errorf("%s first point signal = %s, want Hold", name, series[0].Signal)
		}
	}

	if p.Current() != ds {
		t.Error("Current() should return the produced dataset")
	}
}

func TestPipelineInstrumentIsolation(t *testing.T) {
	// a wildly volatile neighbor must not disturb a flat instrument
	p := newTestPipeline(t, nil, newCountingMetrics(),
		&stubSource{name: "FLAT", closes: []float64{100, 100, 100, 100, 100}},
		&stubSource{name: "WILD", closes: []float64{10, 5000, 3, 9000, 1}},
	)

	ds, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, pt := range ds.Series("FLAT") {
		if pt.Signal != models.SignalHold {
			t.Errorf("FLAT[%d] signal = %s, want Hold", i, pt.Signal)
		}
		if pt.Stats.Mean != 100 {
			t.Errorf("FLAT[%d] mean = %v, want 100", i, pt.Stats.Mean)
		}
	}
}

func TestPipelineSkipsUnavailableSource(t *testing.T) {
	p := newTestPipeline(t, nil, newCountingMetrics(),
		&stubSource{name: "GONE", err: models.ErrSourceUnavailable},
		&stubSource{name: "NTPC", closes: []float64{360, 361}},
	)

	ds, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if _, ok := ds.Warnings["GONE"]; !ok {
		t.Error("missing warning for unavailable source")
	}
	if got := ds.Instruments(); len(got) != 1 || got[0] != "NTPC" {
		t.Fatalf("instruments = %v, want [NTPC]", got)
	}
}

func TestPipelineAllSourcesUnavailable(t *testing.T) {
	p := newTestPipeline(t, nil, newCountingMetrics(),
		&stubSource{name: "A", err: models.ErrSourceUnavailable},
		&stubSource{name: "B", err: models.ErrSourceUnavailable},
	)

	if _, err := p.Run(context.Background(), false); !errors.Is(err, models.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestPipelineNoSources(t *testing.T) {
	p := newTestPipeline(t, nil, newCountingMetrics())
	if _, err := p.Run(context.Background(), false); !errors.Is(err, models.ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}

func TestPipelineChecksumStable(t *testing.T) {
	mk := func() *Pipeline {
		return newTestPipeline(t, nil, newCountingMetrics(),
			&stubSource{name: "NTPC", closes: []float64{360, 361, 362}},
		)
	}

	ds1, err := mk().Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	ds2, err := mk().Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ds1.Checksum == "" || ds1.Checksum != ds2.Checksum {
		t.Fatalf("checksums differ: %q vs %q", ds1.Checksum, ds2.Checksum)
	}
}

func TestPipelineResultCacheHit(t *testing.T) {
	m := newCountingMetrics()
	results := cache.NewMemoryCache(cache.WithMemoryMaxSize(4))
	defer results.Close()

	p := newTestPipeline(t, results, m,
		&stubSource{name: "NTPC", closes: []float64{360, 361, 362}},
	)

	if _, err := p.Run(context.Background(), false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if m.cacheEvents["miss"] != 1 {
		t.Fatalf("misses = %d, want 1", m.cacheEvents["miss"])
	}

	ds, err := p.Run(context.Background(), false)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if m.cacheEvents["hit"] != 1 {
		t.Fatalf("hits = %d, want 1", m.cacheEvents["hit"])
	}
	if len(ds.Points) != 3 {
		t.Fatalf("cached points = %d, want 3", len(ds.Points))
	}
}

func TestPipelineForceBypassesCache(t *testing.T) {
	m := newCountingMetrics()
	results := cache.NewMemoryCache(cache.WithMemoryMaxSize(4))
	defer results.Close()

	p := newTestPipeline(t, results, m,
		&stubSource{name: "NTPC", closes: []float64{360, 361, 362}},
	)

	if _, err := p.Run(context.Background(), false); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := p.Run(context.Background(), true); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if m.cacheEvents["hit"] != 0 {
		t.Fatalf("hits = %d, want 0 with force", m.cacheEvents["hit"])
	}
}

func TestSummarize(t *testing.T) {
	date := time.Date(2025, time.July, 10, 0, 0, 0, 0, time.UTC)
	points := []models.SeriesPoint{
		{Observation: models.Observation{Instrument: "A"}, Signal: models.SignalBuy, DeviationScore: -2.5, DeviationDefined: true},
		{Observation: models.Observation{Instrument: "B"}, Signal: models.SignalSell, DeviationScore: 1.4, DeviationDefined: true},
		{Observation: models.Observation{Instrument: "C"}, Signal: models.SignalHold, DeviationScore: 0.1, DeviationDefined: true},
		{Observation: models.Observation{Instrument: "D"}, Signal: models.SignalHold},
	}

	s := Summarize(points, date)
	if s.Total != 4 || s.Buy != 1 || s.Sell != 1 || s.Hold != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Date != "2025-07-10" {
		t.Errorf("date = %q", s.Date)
	}
	if len(s.Top) != 3 {
		t.Fatalf("top = %d entries, want 3", len(s.Top))
	}
	if s.Top[0].Instrument != "A" {
		t.Errorf("largest absolute deviation should rank first, got %q", s.Top[0].Instrument)
	}
}
