// Package classifier derives band thresholds from rolling statistics and
// assigns each observation a trading action.
package classifier

import "TrendBand/internal/domain/models"

// DefaultBandMultiplier is the number of standard deviations between the
// moving average and each band when none is configured.
const DefaultBandMultiplier = 1.0

// Classify builds the series point for one observation. Signals use strict
// inequalities only: a close sitting exactly on a band is Hold, and an
// undefined or zero standard deviation always resolves to Hold since the
// price cannot be strictly outside a collapsed or undefined band.
func Classify(obs models.Observation, stats models.RollingStats, k float64) models.SeriesPoint {
	if k <= 0 {
		k = DefaultBandMultiplier
	}

	p := models.SeriesPoint{
		Observation: obs,
		Stats:       stats,
		Signal:      models.SignalHold,
	}
	if !stats.Defined {
		return p
	}

	p.UpperBand = stats.Mean + k*stats.StdDev
	p.LowerBand = stats.Mean - k*stats.StdDev

	px := obs.Close.InexactFloat64()
	switch {
	case px < p.LowerBand:
		p.Signal = models.SignalBuy
	case px > p.UpperBand:
		p.Signal = models.SignalSell
	}

	if stats.StdDev > 0 {
		p.DeviationScore = (px - stats.Mean) / stats.StdDev
		p.DeviationDefined = true
	}
	return p
}

// ClassifySeries applies Classify across aligned observation/stats slices.
func ClassifySeries(obs []models.Observation, stats []models.RollingStats, k float64) []models.SeriesPoint {
	out := make([]models.SeriesPoint, 0, len(obs))
	for i := range obs {
		out = append(out, Classify(obs[i], stats[i], k))
	}
	return out
}
