package util

import (
	"testing"
	"time"
)

func TestParseTradeDate(t *testing.T) {
	got, ok := ParseTradeDate("28-Mar-2025")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseTradeDateTrimsWhitespace(t *testing.T) {
	got, ok := ParseTradeDate("  01-Jan-2024 ")
	if !ok {
		t.Fatalf("expected ok")
	}
	if !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseTradeDateInvalid(t *testing.T) {
	for _, s := range []string{"", "2025-13-01", "32-Jan-2025", "Mar-28-2025"} {
		if _, ok := ParseTradeDate(s); ok {
			t.Fatalf("expected failure for %q", s)
		}
	}
}

func TestParseQueryDate(t *testing.T) {
	got, ok := ParseQueryDate("2025-04-01")
	if !ok || !got.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected iso parse %v ok=%v", got, ok)
	}

	got, ok = ParseQueryDate("28-Mar-2025")
	if !ok || !got.Equal(time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected trade-layout parse %v ok=%v", got, ok)
	}

	for _, s := range []string{"", "garbage", "2025-13-01"} {
		if _, ok := ParseQueryDate(s); ok {
			t.Fatalf("expected failure for %q", s)
		}
	}
}

func TestDayStripsTime(t *testing.T) {
	in := time.Date(2025, 3, 28, 17, 45, 3, 12, time.FixedZone("X", 3600))
	got := Day(in)
	if got.Hour() != 0 || got.Minute() != 0 || got.Location() != time.UTC {
		t.Fatalf("unexpected day %v", got)
	}
	if !Day(in).Equal(got) {
		t.Fatalf("Day not idempotent: %v", got)
	}
}
