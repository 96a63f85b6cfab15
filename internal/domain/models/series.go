package models

import (
	"sort"
	"time"
)

// Signal is the discrete trading action assigned to one observation.
type Signal string

const (
	SignalBuy  Signal = "Buy"
	SignalSell Signal = "Sell"
	SignalHold Signal = "Hold"
)

// RollingStats carries the trailing window statistics for one observation.
// Defined is false while the window holds a single element: the sample
// standard deviation has no value there and downstream comparisons must fall
// back to Hold instead of relying on NaN propagation.
type RollingStats struct {
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Defined bool    `json:"defined"`
}

// SeriesPoint is an observation augmented with its rolling statistics, band
// thresholds and classification. Bands are only meaningful when
// Stats.Defined is true.
type SeriesPoint struct {
	Observation
	Stats            RollingStats `json:"stats"`
	UpperBand        float64      `json:"upper_band"`
	LowerBand        float64      `json:"lower_band"`
	Signal           Signal       `json:"signal"`
	DeviationScore   float64      `json:"deviation_score"`
	DeviationDefined bool         `json:"deviation_defined"`
}

// Dataset is the result of one full pipeline pass: series points grouped by
// instrument, chronologically ascending within each group. It is immutable
// once produced; consumers must treat the slices as read-only.
type Dataset struct {
	Points     []SeriesPoint     `json:"points"`
	Warnings   map[string]string `json:"warnings,omitempty"`
	Checksum   string            `json:"checksum"`
	ComputedAt time.Time         `json:"computed_at"`
}

// Instruments returns the distinct instrument identifiers in dataset order.
func (d *Dataset) Instruments() []string {
	out := make([]string, 0, 8)
	last := ""
	for _, p := range d.Points {
		if p.Instrument != last {
			out = append(out, p.Instrument)
			last = p.Instrument
		}
	}
	return out
}

// Series returns the full chronological series for one instrument.
func (d *Dataset) Series(instrument string) []SeriesPoint {
	lo := sort.Search(len(d.Points), func(i int) bool {
		return d.Points[i].Instrument >= instrument
	})
	hi := lo
	for hi < len(d.Points) && d.Points[hi].Instrument == instrument {
		hi++
	}
	return d.Points[lo:hi]
}

// SeriesLastDays returns the trailing slice of an instrument's series whose
// dates fall within `days` days of the dataset's most recent date. days <= 0
// returns the full series.
func (d *Dataset) SeriesLastDays(instrument string, days int) []SeriesPoint {
	series := d.Series(instrument)
	if days <= 0 || len(series) == 0 {
		return series
	}
	max, ok := d.MaxDate()
	if !ok {
		return series
	}
	cutoff := max.AddDate(0, 0, -days)
	lo := sort.Search(len(series), func(i int) bool {
		return !series[i].Date.Before(cutoff)
	})
	return series[lo:]
}

// SnapshotOn returns every instrument's point for one calendar date. An empty
// result is valid (no instrument traded that day), distinct from a failed
// pass.
func (d *Dataset) SnapshotOn(date time.Time) []SeriesPoint {
	out := make([]SeriesPoint, 0, 8)
	for _, p := range d.Points {
		if p.Date.Equal(date) {
			out = append(out, p)
		}
	}
	return out
}

// Dates returns the sorted distinct trade dates across all instruments.
func (d *Dataset) Dates() []time.Time {
	seen := make(map[time.Time]struct{})
	out := make([]time.Time, 0, 64)
	for _, p := range d.Points {
		if _, ok := seen[p.Date]; ok {
			continue
		}
		seen[p.Date] = struct{}{}
		out = append(out, p.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// MaxDate returns the most recent trade date in the dataset.
func (d *Dataset) MaxDate() (time.Time, bool) {
	var max time.Time
	for _, p := range d.Points {
		if p.Date.After(max) {
			max = p.Date
		}
	}
	return max, !max.IsZero()
}
