// Package usecase orchestrates the signal pipeline: fan-out loading across
// instruments, rolling statistics, band classification and result caching.
package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"TrendBand/internal/classifier"
	"TrendBand/internal/domain/models"
	domrepo "TrendBand/internal/domain/repository"
	"TrendBand/internal/loader"
	"TrendBand/internal/merger"
	"TrendBand/internal/rolling"
	"TrendBand/pkg/cache"
	applogger "TrendBand/pkg/logger"
)

// Options tunes one Pipeline instance.
type Options struct {
	Window         int
	BandMultiplier float64
	LoadTimeout    time.Duration
	CacheTTL       time.Duration
}

// Pipeline loads every configured instrument, computes the banded series and
// holds the latest dataset for the query layer. One pipeline owns one
// universe of instruments.
type Pipeline struct {
	sources   []domrepo.RecordSource
	loader    *loader.Loader
	publisher domrepo.SignalPublisher
	results   cache.BytesCache
	metrics   domrepo.Metrics
	l         *applogger.Logger
	opts      Options

	mu      sync.RWMutex
	current *models.Dataset
}

func NewPipeline(
	sources []domrepo.RecordSource,
	ld *loader.Loader,
	publisher domrepo.SignalPublisher,
	results cache.BytesCache,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	opts Options,
) *Pipeline {
	if opts.Window <= 0 {
		opts.Window = rolling.DefaultWindow
	}
	if opts.BandMultiplier <= 0 {
		opts.BandMultiplier = classifier.DefaultBandMultiplier
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	return &Pipeline{
		sources:   sources,
		loader:    ld,
		publisher: publisher,
		results:   results,
		metrics:   metrics,
		l:         l,
		opts:      opts,
	}
}

// Current returns the dataset from the most recent successful pass, or nil
// before the first pass completes.
func (p *Pipeline) Current() *models.Dataset {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

type loadResult struct {
	instrument string
	obs        []models.Observation
	err        error
}

// Run executes one full pass. Unavailable sources are skipped and reported in
// the dataset warnings; a pass with no observations at all fails with
// models.ErrEmptyInput. When force is false the result cache may serve a
// previously computed dataset for identical inputs.
func (p *Pipeline) Run(ctx context.Context, force bool) (*models.Dataset, error) {
	start := time.Now()

	perInstrument, warnings, err := p.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	sum := p.checksum(perInstrument)

	if !force && p.results != nil {
		if ds, ok := p.fromCache(ctx, sum); ok {
			ds.Warnings = warnings
			p.install(ds)
			return ds, nil
		}
	}

	ds, err := p.compute(perInstrument, warnings, sum)
	if err != nil {
		return nil, err
	}

	p.toCache(ctx, sum, ds)
	p.install(ds)
	p.observe(ds, time.Since(start))
	p.publish(ctx, ds)

	return ds, nil
}

// Invalidate drops the cached result for the current inputs so the next Run
// recomputes from scratch.
func (p *Pipeline) Invalidate(ctx context.Context) {
	p.mu.RLock()
	ds := p.current
	p.mu.RUnlock()
	if ds == nil || p.results == nil {
		return
	}
	if err := p.results.Delete(ctx, resultKey(ds.Checksum)); err != nil {
		p.l.Warn("cache invalidate failed", applogger.Error(err))
		return
	}
	p.metrics.RecordCacheEvent("invalidate")
}

// loadAll fans out one goroutine per source and gathers normalized
// observations. Unavailable sources become warnings rather than failures.
func (p *Pipeline) loadAll(ctx context.Context) ([][]models.Observation, map[string]string, error) {
	if len(p.sources) == 0 {
		return nil, nil, models.ErrEmptyInput
	}

	loadCtx := ctx
	if p.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, p.opts.LoadTimeout)
		defer cancel()
	}

	results := make(chan loadResult, len(p.sources))
	var wg sync.WaitGroup
	for _, src := range p.sources {
		wg.Add(1)
		go func(src domrepo.RecordSource) {
			defer wg.Done()
			obs, err := p.loader.Load(loadCtx, src)
			results <- loadResult{instrument: src.Instrument(), obs: obs, err: err}
		}(src)
	}
	wg.Wait()
	close(results)

	byInstrument := make(map[string][]models.Observation, len(p.sources))
	warnings := make(map[string]string)
	for r := range results {
		if r.err != nil {
			if errors.Is(r.err, models.ErrSourceUnavailable) {
				p.l.Warn("source unavailable, skipping instrument",
					applogger.String("instrument", r.instrument),
					applogger.Error(r.err),
				)
				warnings[r.instrument] = r.err.Error()
				continue
			}
			return nil, nil, r.err
		}
		byInstrument[r.instrument] = r.obs
	}

	// deterministic order regardless of goroutine scheduling
	ordered := make([][]models.Observation, 0, len(byInstrument))
	for _, src := range p.sources {
		if obs, ok := byInstrument[src.Instrument()]; ok && len(obs) > 0 {
			ordered = append(ordered, obs)
		}
	}
	if len(ordered) == 0 {
		return nil, nil, fmt.Errorf("%w: no instrument produced observations", models.ErrEmptyInput)
	}
	if len(warnings) == 0 {
		warnings = nil
	}
	return ordered, warnings, nil
}

// compute runs merge, rolling statistics and classification per instrument.
func (p *Pipeline) compute(perInstrument [][]models.Observation, warnings map[string]string, sum string) (*models.Dataset, error) {
	merged, err := merger.Merge(perInstrument...)
	if err != nil {
		return nil, err
	}

	points := make([]models.SeriesPoint, 0, len(merged))
	for _, series := range merger.Split(merged) {
		stats := rolling.Compute(series, p.opts.Window)
		points = append(points, classifier.ClassifySeries(series, stats, p.opts.BandMultiplier)...)
	}

	return &models.Dataset{
		Points:     points,
		Warnings:   warnings,
		Checksum:   sum,
		ComputedAt: time.Now().UTC(),
	}, nil
}

// checksum fingerprints the analysis parameters plus every observation, so
// identical inputs map to identical cache keys.
func (p *Pipeline) checksum(perInstrument [][]models.Observation) string {
	h := sha256.New()
	fmt.Fprintf(h, "w=%d;k=%g\n", p.opts.Window, p.opts.BandMultiplier)
	for _, series := range perInstrument {
		for _, o := range series {
			fmt.Fprintf(h, "%s|%s|%s\n", o.Instrument, o.Date.Format("2006-01-02"), o.Close.String())
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func resultKey(sum string) string {
	return "result:" + sum
}

func (p *Pipeline) fromCache(ctx context.Context, sum string) (*models.Dataset, bool) {
	b, ok, err := p.results.GetBytes(ctx, resultKey(sum))
	if err != nil {
		p.l.Warn("result cache read failed", applogger.Error(err))
		return nil, false
	}
	if !ok {
		p.metrics.RecordCacheEvent("miss")
		return nil, false
	}
	var ds models.Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		p.l.Warn("result cache entry corrupt, recomputing", applogger.Error(err))
		return nil, false
	}
	p.metrics.RecordCacheEvent("hit")
	return &ds, true
}

func (p *Pipeline) toCache(ctx context.Context, sum string, ds *models.Dataset) {
	if p.results == nil {
		return
	}
	b, err := json.Marshal(ds)
	if err != nil {
		p.l.Warn("result cache encode failed", applogger.Error(err))
		return
	}
	if err := p.results.SetBytes(ctx, resultKey(sum), b, p.opts.CacheTTL); err != nil {
		p.l.Warn("result cache write failed", applogger.Error(err))
	}
}

func (p *Pipeline) install(ds *models.Dataset) {
	p.mu.Lock()
	p.current = ds
	p.mu.Unlock()
}

// observe records per-instrument last closes, latest-date signal counts and
// the total pass duration.
func (p *Pipeline) observe(ds *models.Dataset, elapsed time.Duration) {
	for _, instrument := range ds.Instruments() {
		series := ds.Series(instrument)
		if len(series) > 0 {
			last := series[len(series)-1]
			p.metrics.RecordLastClose(instrument, last.Close.InexactFloat64())
		}
	}

	counts := map[models.Signal]int{
		models.SignalBuy:  0,
		models.SignalSell: 0,
		models.SignalHold: 0,
	}
	if max, ok := ds.MaxDate(); ok {
		for _, pt := range ds.SnapshotOn(max) {
			counts[pt.Signal]++
		}
	}
	for sig, n := range counts {
		p.metrics.RecordSignals(string(sig), n)
	}
	p.metrics.RecordPassDuration(elapsed.Seconds())

	p.l.Info("pass complete",
		applogger.Int("points", len(ds.Points)),
		applogger.Int("instruments", len(ds.Instruments())),
		applogger.Duration("elapsed", elapsed),
	)
}

// publish sends the latest trade date's actionable signals downstream.
// Publishing is best effort: a broker failure never fails the pass.
func (p *Pipeline) publish(ctx context.Context, ds *models.Dataset) {
	if p.publisher == nil {
		return
	}
	max, ok := ds.MaxDate()
	if !ok {
		return
	}
	if err := p.publisher.PublishSignals(ctx, ds.SnapshotOn(max)); err != nil {
		p.l.Error("signal publish failed", applogger.Error(err))
	}
}

// SignalSummary counts signals for one trade date.
type SignalSummary struct {
	Date  string         `json:"date"`
	Total int            `json:"total"`
	Buy   int            `json:"buy"`
	Sell  int            `json:"sell"`
	Hold  int            `json:"hold"`
	Top   []TopDeviation `json:"top_deviations,omitempty"`
}

// TopDeviation names an instrument whose close sits far from its mean.
type TopDeviation struct {
	Instrument string  `json:"instrument"`
	Score      float64 `json:"score"`
	Signal     string  `json:"signal"`
}

// Summarize builds the per-signal counts and the largest absolute deviation
// scores for one date.
func Summarize(points []models.SeriesPoint, date time.Time) SignalSummary {
	s := SignalSummary{Date: date.Format("2006-01-02"), Total: len(points)}
	devs := make([]TopDeviation, 0, len(points))
	for _, pt := range points {
		switch pt.Signal {
		case models.SignalBuy:
			s.Buy++
		case models.SignalSell:
			s.Sell++
		default:
			s.Hold++
		}
		if pt.DeviationDefined {
			devs = append(devs, TopDeviation{
				Instrument: pt.Instrument,
				Score:      pt.DeviationScore,
				Signal:     string(pt.Signal),
			})
		}
	}
	sort.Slice(devs, func(i, j int) bool {
		ai, aj := devs[i].Score, devs[j].Score
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		return ai > aj
	})
	if len(devs) > 5 {
		devs = devs[:5]
	}
	if len(devs) > 0 {
		s.Top = devs
	}
	return s
}
