// Package rolling computes trailing moving averages and sample standard
// deviations over a fixed window, evaluated independently per instrument.
package rolling

import (
	"math"

	"TrendBand/internal/domain/models"
)

// DefaultWindow is the trailing window size used when none is configured.
const DefaultWindow = 10

// Compute evaluates rolling statistics for one instrument's chronologically
// ordered observations. The window shrinks at the series start
// (start = max(0, i-W+1)), so the leading W-1 points form the warm-up
// region. A single-element window yields an undefined standard deviation
// (Defined=false), never NaN.
func Compute(obs []models.Observation, window int) []models.RollingStats {
	if window < 1 {
		window = DefaultWindow
	}

	closes := make([]float64, len(obs))
	for i, o := range obs {
		closes[i] = o.Close.InexactFloat64()
	}

	out := make([]models.RollingStats, len(obs))
	for i := range closes {
		start := i - window + 1
		if start < 0 {
			start = 0
		}
		out[i] = windowStats(closes[start : i+1])
	}
	return out
}

// windowStats computes the mean and unbiased (n-1 denominator) sample
// standard deviation of a non-empty window.
func windowStats(win []float64) models.RollingStats {
	n := float64(len(win))

	sum := 0.0
	for _, v := range win {
		sum += v
	}
	mean := sum / n

	if len(win) < 2 {
		return models.RollingStats{Mean: mean}
	}

	ss := 0.0
	for _, v := range win {
		d := v - mean
		ss += d * d
	}
	variance := ss / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return models.RollingStats{
		Mean:    mean,
		StdDev:  math.Sqrt(variance),
		Defined: true,
	}
}
