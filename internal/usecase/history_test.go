package usecase

import (
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

func seqBars(start time.Time, n int, step time.Duration, tf models.Timeframe) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price + 0.5,
			Volume:    10,
			Timeframe: tf,
			Symbol:    "NQ",
		}
	}
	return bars
}

func TestSnapshotExcludesFutureBars(t *testing.T) {
	start := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
	cache := NewHistoryCache("NQ")
	cache.Put(models.TF5m, seqBars(start, 50, 5*time.Minute, models.TF5m))

	asOf := start.Add(20 * 5 * time.Minute)
	snap := cache.Snapshot(asOf, 100)

	bars := snap.Series(models.TF5m)
	if len(bars) != 21 {
		t.Fatalf("got %d bars, want 21 (indexes 0..20)", len(bars))
	}
	for _, b := range bars {
		if b.Timestamp.After(asOf) {
			t.Fatalf("bar at %v leaked past asOf %v", b.Timestamp, asOf)
		}
	}
	if !bars[len(bars)-1].Timestamp.Equal(asOf) {
		t.Errorf("last bar at %v, want exactly asOf", bars[len(bars)-1].Timestamp)
	}
}

func TestSnapshotLookbackCap(t *testing.T) {
	start := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
	cache := NewHistoryCache("NQ")
	cache.Put(models.TF5m, seqBars(start, 300, 5*time.Minute, models.TF5m))

	snap := cache.Snapshot(start.Add(299*5*time.Minute), 100)
	bars := snap.Series(models.TF5m)
	if len(bars) != 100 {
		t.Fatalf("got %d bars, want the 100-bar cap", len(bars))
	}
	// The cap keeps the most recent bars.
	if bars[len(bars)-1].Close != 100+299+0.5 {
		t.Errorf("last close = %.1f, want the newest bar", bars[len(bars)-1].Close)
	}
}

func TestAggregateBarsMergesWindows(t *testing.T) {
	start := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
	fine := []models.Bar{
		{Timestamp: start, Open: 100, High: 102, Low: 99, Close: 101, Volume: 10, Timeframe: models.TF5m},
		{Timestamp: start.Add(5 * time.Minute), Open: 101, High: 104, Low: 100, Close: 103, Volume: 20, Timeframe: models.TF5m},
		{Timestamp: start.Add(10 * time.Minute), Open: 103, High: 103.5, Low: 98, Close: 99, Volume: 30, Timeframe: models.TF5m},
		{Timestamp: start.Add(15 * time.Minute), Open: 99, High: 100, Low: 98.5, Close: 99.5, Volume: 5, Timeframe: models.TF5m},
	}

	out := AggregateBars(fine, models.TF15m)
	if len(out) != 2 {
		t.Fatalf("got %d bars, want 2", len(out))
	}
	first := out[0]
	if first.Open != 100 || first.High != 104 || first.Low != 98 || first.Close != 99 {
		t.Errorf("merged OHLC = %.1f/%.1f/%.1f/%.1f, want 100/104/98/99",
			first.Open, first.High, first.Low, first.Close)
	}
	if first.Volume != 60 {
		t.Errorf("merged volume = %.0f, want 60", first.Volume)
	}
	if first.Timeframe != models.TF15m {
		t.Errorf("timeframe = %s, want 15m", first.Timeframe)
	}
	if out[1].Open != 99 || out[1].Volume != 5 {
		t.Errorf("trailing partial window wrong: %+v", out[1])
	}
}

func TestDailyFromIntraday(t *testing.T) {
	d1 := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 11, 14, 0, 0, 0, time.UTC)
	fine := []models.Bar{
		{Timestamp: d1, Open: 100, High: 105, Low: 99, Close: 104, Volume: 1},
		{Timestamp: d1.Add(time.Hour), Open: 104, High: 106, Low: 103, Close: 105, Volume: 2},
		{Timestamp: d2, Open: 105, High: 107, Low: 104, Close: 106, Volume: 3},
	}

	out := DailyFromIntraday(fine)
	if len(out) != 2 {
		t.Fatalf("got %d daily bars, want 2", len(out))
	}
	if out[0].High != 106 || out[0].Low != 99 || out[0].Close != 105 {
		t.Errorf("day 1 = %+v", out[0])
	}
	if !out[0].Timestamp.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day 1 timestamp = %v, want UTC midnight", out[0].Timestamp)
	}
}
