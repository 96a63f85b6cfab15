package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func point(instrument string, d int, close float64, sig Signal) SeriesPoint {
	return SeriesPoint{
		Observation: Observation{
			Instrument: instrument,
			Date:       time.Date(2025, time.July, d, 0, 0, 0, 0, time.UTC),
			Close:      decimal.NewFromFloat(close),
		},
		Signal: sig,
	}
}

func testDataset() *Dataset {
	return &Dataset{
		Points: []SeriesPoint{
			point("DLF", 1, 840, SignalHold),
			point("DLF", 2, 845, SignalSell),
			point("DLF", 10, 850, SignalHold),
			point("NTPC", 1, 360, SignalHold),
			point("NTPC", 10, 365, SignalBuy),
		},
	}
}

func TestDatasetInstruments(t *testing.T) {
	got := testDataset().Instruments()
	want := []string{"DLF", "NTPC"}
	if len(got) != len(want) {
		t.Fatalf("instruments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("instruments[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDatasetSeries(t *testing.T) {
	ds := testDataset()

	dlf := ds.Series("DLF")
	if len(dlf) != 3 {
		t.Fatalf("DLF series = %d points, want 3", len(dlf))
	}
	for i := 1; i < len(dlf); i++ {
		if !dlf[i-1].Date.Before(dlf[i].Date) {
			t.Error("series not chronological")
		}
	}

	if got := ds.Series("UNKNOWN"); len(got) != 0 {
		t.Fatalf("unknown instrument series = %d points, want 0", len(got))
	}
}

func TestDatasetSeriesLastDays(t *testing.T) {
	ds := testDataset()

	// max date is Jul 10; a 5 day lookback keeps only Jul 10
	got := ds.SeriesLastDays("DLF", 5)
	if len(got) != 1 || got[0].Date.Day() != 10 {
		t.Fatalf("last 5 days = %+v, want single Jul 10 point", got)
	}

	// zero means the whole series
	if got := ds.SeriesLastDays("DLF", 0); len(got) != 3 {
		t.Fatalf("days=0 returned %d points, want 3", len(got))
	}

	// lookback spanning everything returns everything
	if got := ds.SeriesLastDays("DLF", 365); len(got) != 3 {
		t.Fatalf("days=365 returned %d points, want 3", len(got))
	}
}

func TestDatasetSnapshotOn(t *testing.T) {
	ds := testDataset()

	jul1 := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	snap := ds.SnapshotOn(jul1)
	if len(snap) != 2 {
		t.Fatalf("snapshot = %d points, want 2", len(snap))
	}

	// a date nobody traded is an empty, valid answer
	jul4 := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	if snap := ds.SnapshotOn(jul4); len(snap) != 0 {
		t.Fatalf("empty date snapshot = %d points, want 0", len(snap))
	}
}

func TestDatasetDatesAndMaxDate(t *testing.T) {
	ds := testDataset()

	dates := ds.Dates()
	if len(dates) != 3 {
		t.Fatalf("dates = %d, want 3", len(dates))
	}
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].Before(dates[i]) {
			t.Error("dates not sorted")
		}
	}

	max, ok := ds.MaxDate()
	if !ok || max.Day() != 10 {
		t.Fatalf("max date = %v ok=%v", max, ok)
	}

	empty := &Dataset{}
	if _, ok := empty.MaxDate(); ok {
		t.Error("empty dataset should have no max date")
	}
}
