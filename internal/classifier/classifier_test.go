package classifier

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"TrendBand/internal/domain/models"
	"TrendBand/internal/rolling"
)

func obs(close float64) models.Observation {
	return models.Observation{
		Instrument: "X",
		Date:       time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		Close:      decimal.NewFromFloat(close),
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestClassifyBuyBelowLowerBand(t *testing.T) {
	// nine 100s then 80: mean 98, stddev sqrt(40) ~ 6.32,
	// lower band ~ 91.68 so 80 is a Buy
	stats := models.RollingStats{Mean: 98, StdDev: math.Sqrt(40), Defined: true}
	p := Classify(obs(80), stats, 1.0)

	if p.Signal != models.SignalBuy {
		t.Fatalf("signal = %s, want Buy", p.Signal)
	}
	if !approx(p.LowerBand, 98-math.Sqrt(40)) {
		t.Errorf("LowerBand = %v", p.LowerBand)
	}
	if !p.DeviationDefined || !approx(p.DeviationScore, (80-98.0)/math.Sqrt(40)) {
		t.Errorf("deviation = %v defined=%v", p.DeviationScore, p.DeviationDefined)
	}
}

func TestClassifySellAboveUpperBand(t *testing.T) {
	// nine 50s then 70: mean 52, stddev sqrt(40), upper band ~ 58.32
	stats := models.RollingStats{Mean: 52, StdDev: math.Sqrt(40), Defined: true}
	p := Classify(obs(70), stats, 1.0)

	if p.Signal != models.SignalSell {
		t.Fatalf("signal = %s, want Sell", p.Signal)
	}
}

func TestClassifyExactBandIsHold(t *testing.T) {
	stats := models.RollingStats{Mean: 100, StdDev: 5, Defined: true}

	if p := Classify(obs(105), stats, 1.0); p.Signal != models.SignalHold {
		t.Errorf("close on upper band: signal = %s, want Hold", p.Signal)
	}
	if p := Classify(obs(95), stats, 1.0); p.Signal != models.SignalHold {
		t.Errorf("close on lower band: signal = %s, want Hold", p.Signal)
	}
}

func TestClassifyUndefinedStdDevIsHold(t *testing.T) {
	stats := models.RollingStats{Mean: 100}
	p := Classify(obs(42), stats, 1.0)

	if p.Signal != models.SignalHold {
		t.Fatalf("signal = %s, want Hold", p.Signal)
	}
	if p.UpperBand != 0 || p.LowerBand != 0 {
		t.Errorf("bands should stay zero when undefined: %v %v", p.UpperBand, p.LowerBand)
	}
	if p.DeviationDefined {
		t.Error("deviation should be undefined")
	}
}

func TestClassifyZeroStdDevIsHold(t *testing.T) {
	// flat window collapses both bands onto the mean
	stats := models.RollingStats{Mean: 50, StdDev: 0, Defined: true}
	p := Classify(obs(50), stats, 1.0)

	if p.Signal != models.SignalHold {
		t.Fatalf("signal = %s, want Hold", p.Signal)
	}
	if p.DeviationDefined {
		t.Error("deviation should be undefined for zero stddev")
	}
}

func TestClassifyBandMultiplier(t *testing.T) {
	stats := models.RollingStats{Mean: 100, StdDev: 5, Defined: true}

	// 92 breaches the 1-sigma band but not the 2-sigma band
	if p := Classify(obs(92), stats, 1.0); p.Signal != models.SignalBuy {
		t.Errorf("k=1: signal = %s, want Buy", p.Signal)
	}
	if p := Classify(obs(92), stats, 2.0); p.Signal != models.SignalHold {
		t.Errorf("k=2: signal = %s, want Hold", p.Signal)
	}
}

func TestClassifySeriesTotality(t *testing.T) {
	closes := []float64{100, 101, 99, 100, 102, 150, 60, 100}
	observations := make([]models.Observation, len(closes))
	for i, c := range closes {
		observations[i] = models.Observation{
			Instrument: "X",
			Date:       time.Date(2025, time.July, 1+i, 0, 0, 0, 0, time.UTC),
			Close:      decimal.NewFromFloat(c),
		}
	}

	stats := rolling.Compute(observations, 10)
	points := ClassifySeries(observations, stats, 1.0)
	if len(points) != len(observations) {
		t.Fatalf("points = %d, want %d", len(points), len(observations))
	}
	for i, p := range points {
		switch p.Signal {
		case models.SignalBuy, models.SignalSell, models.SignalHold:
		default:
			t.Errorf("points[%d] has invalid signal %q", i, p.Signal)
		}
		if p.Stats.Defined && !(p.LowerBand <= p.Stats.Mean && p.Stats.Mean <= p.UpperBand) {
			t.Errorf("points[%d] band ordering violated: %v %v %v",
				i, p.LowerBand, p.Stats.Mean, p.UpperBand)
		}
	}
}
