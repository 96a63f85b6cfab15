// Package merger concatenates per-instrument observation series into one
// ordered dataset.
package merger

import (
	"sort"

	"TrendBand/internal/domain/models"
)

// Merge combines per-instrument series into a single sequence sorted by
// instrument identifier, then date ascending. The sort is stable so each
// instrument's chronology is never interleaved. Returns
// models.ErrEmptyInput when every series is empty.
func Merge(series ...[]models.Observation) ([]models.Observation, error) {
	total := 0
	for _, s := range series {
		total += len(s)
	}
	if total == 0 {
		return nil, models.ErrEmptyInput
	}

	out := make([]models.Observation, 0, total)
	for _, s := range series {
		out = append(out, s...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Instrument != out[j].Instrument {
			return out[i].Instrument < out[j].Instrument
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

// Split partitions a merged sequence back into per-instrument runs, in
// merged order. Input must already be grouped by instrument.
func Split(merged []models.Observation) [][]models.Observation {
	var out [][]models.Observation
	start := 0
	for i := 1; i <= len(merged); i++ {
		if i == len(merged) || merged[i].Instrument != merged[start].Instrument {
			out = append(out, merged[start:i])
			start = i
		}
	}
	return out
}
