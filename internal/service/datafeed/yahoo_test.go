package datafeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/service/cache"
)

func f(v float64) *float64 { return &v }

func chartJSON(timestamps []int64, opens, highs, lows, closes []*float64, price float64) string {
	resp := map[string]any{
		"chart": map[string]any{
			"result": []any{
				map[string]any{
					"meta":      map[string]any{"regularMarketPrice": price},
					"timestamp": timestamps,
					"indicators": map[string]any{
						"quote": []any{
							map[string]any{
								"open":  opens,
								"high":  highs,
								"low":   lows,
								"close": closes,
							},
						},
					},
				},
			},
		},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestGetBarsParsesAndFloors(t *testing.T) {
	// 10:02:30 UTC must land on the 10:00 5m boundary.
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	ts := []int64{base.Unix() + 150, base.Add(5 * time.Minute).Unix()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("interval"); got != "5m" {
			t.Errorf("interval = %q, want 5m", got)
		}
		fmt.Fprint(w, chartJSON(ts,
			[]*float64{f(100), f(101)},
			[]*float64{f(102), f(103)},
			[]*float64{f(99), f(100)},
			[]*float64{f(101), f(102)},
			0))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", 5*time.Second, nil)
	bars, err := p.GetBars(context.Background(), "NQ", models.TF5m, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if !bars[0].Timestamp.Equal(base) {
		t.Errorf("first bar at %s, want floored %s", bars[0].Timestamp, base)
	}
	if bars[0].Open != 100 || bars[0].High != 102 || bars[0].Low != 99 || bars[0].Close != 101 {
		t.Errorf("bar 0 = %+v", bars[0])
	}
	if bars[0].Symbol != "NQ" || bars[0].Timeframe != models.TF5m {
		t.Errorf("bar 0 tagging = %s/%s", bars[0].Symbol, bars[0].Timeframe)
	}
}

func TestGetBarsSkipsNullRows(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	ts := []int64{base.Unix(), base.Add(5 * time.Minute).Unix(), base.Add(10 * time.Minute).Unix()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(ts,
			[]*float64{f(100), nil, f(102)},
			[]*float64{f(101), nil, f(103)},
			[]*float64{f(99), nil, f(101)},
			[]*float64{f(100), nil, f(102)},
			0))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", 5*time.Second, nil)
	bars, err := p.GetBars(context.Background(), "NQ", models.TF5m, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2 after dropping the null row", len(bars))
	}
}

func TestGetQuoteUsesMetaPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON(nil, nil, nil, nil, nil, 21450.25))
	}))
	defer srv.Close()

	p := NewYahooProvider(srv.URL, "", 5*time.Second, nil)
	q, err := p.GetQuote(context.Background(), "NQ")
	if err != nil {
		t.Fatal(err)
	}
	if q.Price != 21450.25 {
		t.Errorf("price = %.2f, want 21450.25", q.Price)
	}
	if q.Symbol != "NQ" {
		t.Errorf("symbol = %q", q.Symbol)
	}
}

func TestAggregateFourHourly(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	var hourly []models.Bar
	for i := 0; i < 9; i++ {
		hourly = append(hourly, models.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      float64(100 + i),
			High:      float64(105 + i),
			Low:       float64(95 + i),
			Close:     float64(101 + i),
			Volume:    10,
			Timeframe: models.TF1h,
			Symbol:    "ES",
		})
	}

	out := aggregate(hourly, 4, models.TF4h)
	if len(out) != 2 {
		t.Fatalf("got %d bars, want 2 (trailing partial dropped)", len(out))
	}
	first := out[0]
	if first.Open != 100 || first.Close != 104 || first.High != 108 || first.Low != 95 {
		t.Errorf("first 4h bar = %+v", first)
	}
	if first.Volume != 40 || first.Timeframe != models.TF4h {
		t.Errorf("first 4h bar vol/tf = %.0f/%s", first.Volume, first.Timeframe)
	}
}

func TestDedupeSortOrdersAndDrops(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	bars := []models.Bar{
		{Timestamp: base.Add(10 * time.Minute), Close: 3},
		{Timestamp: base, Close: 1},
		{Timestamp: base.Add(10 * time.Minute), Close: 99}, // duplicate, dropped
		{Timestamp: base.Add(5 * time.Minute), Close: 2},
	}

	out := dedupeSort(bars)
	if len(out) != 3 {
		t.Fatalf("got %d bars, want 3", len(out))
	}
	for i, want := range []float64{1, 2, 3} {
		if out[i].Close != want {
			t.Errorf("bar %d close = %.0f, want %.0f", i, out[i].Close, want)
		}
	}
}

type stubInner struct {
	quoteCalls int
	barCalls   int
}

func (s *stubInner) GetBars(_ context.Context, symbol string, tf models.Timeframe, _ int) ([]models.Bar, error) {
	s.barCalls++
	return []models.Bar{{Symbol: symbol, Timeframe: tf, Close: 100}}, nil
}

func (s *stubInner) GetBarsRange(context.Context, string, models.Timeframe, time.Time, time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (s *stubInner) GetQuote(_ context.Context, symbol string) (models.Quote, error) {
	s.quoteCalls++
	return models.Quote{Symbol: symbol, Price: 100}, nil
}

func TestCachedProviderServesRepeatsFromCache(t *testing.T) {
	inner := &stubInner{}
	p := NewCachedProvider(inner, cache.NewTTLCache(), 5*time.Second, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := p.GetQuote(context.Background(), "NQ"); err != nil {
			t.Fatal(err)
		}
		if _, err := p.GetBars(context.Background(), "NQ", models.TF5m, 100); err != nil {
			t.Fatal(err)
		}
	}
	if inner.quoteCalls != 1 {
		t.Errorf("quote fetched %d times, want 1", inner.quoteCalls)
	}
	if inner.barCalls != 1 {
		t.Errorf("bars fetched %d times, want 1", inner.barCalls)
	}
}
