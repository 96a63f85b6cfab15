package merger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"TrendBand/internal/domain/models"
)

func obs(instrument string, d int, close float64) models.Observation {
	return models.Observation{
		Instrument: instrument,
		Date:       time.Date(2025, time.July, d, 0, 0, 0, 0, time.UTC),
		Close:      decimal.NewFromFloat(close),
	}
}

func TestMergeOrdersByInstrumentThenDate(t *testing.T) {
	a := []models.Observation{obs("NTPC", 1, 360), obs("NTPC", 2, 361)}
	b := []models.Observation{obs("DLF", 1, 840), obs("DLF", 3, 842)}

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	want := []struct {
		instrument string
		day        int
	}{
		{"DLF", 1}, {"DLF", 3}, {"NTPC", 1}, {"NTPC", 2},
	}
	if len(merged) != len(want) {
		t.Fatalf("merged = %d rows, want %d", len(merged), len(want))
	}
	for i, w := range want {
		if merged[i].Instrument != w.instrument || merged[i].Date.Day() != w.day {
			t.Errorf("merged[%d] = %s/%d, want %s/%d",
				i, merged[i].Instrument, merged[i].Date.Day(), w.instrument, w.day)
		}
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if _, err := Merge(); !errors.Is(err, models.ErrEmptyInput) {
		t.Fatalf("Merge() err = %v, want ErrEmptyInput", err)
	}
	if _, err := Merge(nil, []models.Observation{}); !errors.Is(err, models.ErrEmptyInput) {
		t.Fatalf("Merge(nil, empty) err = %v, want ErrEmptyInput", err)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	merged, err := Merge(
		[]models.Observation{obs("B", 1, 2), obs("B", 2, 3)},
		[]models.Observation{obs("A", 1, 1)},
		[]models.Observation{obs("C", 5, 9)},
	)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}

	groups := Split(merged)
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	wantNames := []string{"A", "B", "C"}
	wantLens := []int{1, 2, 1}
	for i, g := range groups {
		if g[0].Instrument != wantNames[i] || len(g) != wantLens[i] {
			t.Errorf("group[%d] = %s len %d, want %s len %d",
				i, g[0].Instrument, len(g), wantNames[i], wantLens[i])
		}
	}
}

func TestSplitEmpty(t *testing.T) {
	if got := Split(nil); got != nil {
		t.Fatalf("Split(nil) = %v, want nil", got)
	}
}
