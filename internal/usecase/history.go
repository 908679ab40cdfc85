package usecase

import (
	"sort"
	"time"

	"EdgeRunner/internal/domain/models"
)

// HistoryCache holds the full bar series for one symbol, one run. Each
// snapshot it hands out is bounded by an explicit instant, so nothing
// downstream can see a bar that had not closed yet.
type HistoryCache struct {
	symbol string
	series map[models.Timeframe][]models.Bar
}

func NewHistoryCache(symbol string) *HistoryCache {
	return &HistoryCache{
		symbol: symbol,
		series: make(map[models.Timeframe][]models.Bar),
	}
}

// Put replaces the series for one timeframe. Bars must be in ascending
// timestamp order.
func (h *HistoryCache) Put(tf models.Timeframe, bars []models.Bar) {
	h.series[tf] = bars
}

func (h *HistoryCache) Len(tf models.Timeframe) int {
	return len(h.series[tf])
}

// Snapshot returns the view as of an instant: for every timeframe, the
// bars with Timestamp <= asOf, capped at lookback per timeframe.
func (h *HistoryCache) Snapshot(asOf time.Time, lookback int) *models.BarSnapshot {
	out := make(map[models.Timeframe][]models.Bar, len(h.series))
	for tf, bars := range h.series {
		// First index strictly after asOf.
		n := sort.Search(len(bars), func(i int) bool {
			return bars[i].Timestamp.After(asOf)
		})
		visible := bars[:n]
		if len(visible) > lookback {
			visible = visible[len(visible)-lookback:]
		}
		out[tf] = visible
	}
	return &models.BarSnapshot{Symbol: h.symbol, Bars: out, AsOf: asOf}
}

// AggregateBars rolls finer bars up into the target timeframe by
// truncated window start. Partial trailing windows are kept; their close
// simply reflects the bars seen so far.
func AggregateBars(bars []models.Bar, target models.Timeframe) []models.Bar {
	d := target.Duration()
	if d <= 0 || len(bars) == 0 {
		return nil
	}

	var out []models.Bar
	for _, b := range bars {
		windowStart := b.Timestamp.Truncate(d)
		if len(out) == 0 || !out[len(out)-1].Timestamp.Equal(windowStart) {
			nb := b
			nb.Timestamp = windowStart
			nb.Timeframe = target
			out = append(out, nb)
			continue
		}
		last := &out[len(out)-1]
		if b.High > last.High {
			last.High = b.High
		}
		if b.Low < last.Low {
			last.Low = b.Low
		}
		last.Close = b.Close
		last.Volume += b.Volume
	}
	return out
}

// DailyFromIntraday builds daily bars (UTC dates) from an intraday
// series, for providers that only serve fine-grained history.
func DailyFromIntraday(bars []models.Bar) []models.Bar {
	var out []models.Bar
	for _, b := range bars {
		y, m, d := b.Timestamp.UTC().Date()
		dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if len(out) == 0 || !out[len(out)-1].Timestamp.Equal(dayStart) {
			nb := b
			nb.Timestamp = dayStart
			nb.Timeframe = models.TF1d
			out = append(out, nb)
			continue
		}
		last := &out[len(out)-1]
		if b.High > last.High {
			last.High = b.High
		}
		if b.Low < last.Low {
			last.Low = b.Low
		}
		last.Close = b.Close
		last.Volume += b.Volume
	}
	return out
}
