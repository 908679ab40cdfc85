package analysis

import (
	"math"

	"EdgeRunner/internal/domain/models"
)

// fvgMinGap is the smallest gap width worth tracking: 0.05% of price or
// a quarter point, whichever is larger.
func fvgMinGap(price float64) float64 {
	return math.Max(price*0.0005, 0.25)
}

// Fvg scans the last 50 bars of the 15m and 1h series for three-candle
// fair value gaps. A gap is filled once price has traded back beyond its
// far edge; sitting exactly on the edge leaves it open. Returns the 10
// most recent unfilled gaps and the one nearest to current price.
func Fvg(snap *models.BarSnapshot, currentPrice float64) models.FvgSignal {
	var gaps []models.Fvg
	minGap := fvgMinGap(currentPrice)

	for _, tf := range []models.Timeframe{models.TF15m, models.TF1h} {
		bars := snap.Series(tf)
		if len(bars) < 3 {
			continue
		}
		recent := bars
		if len(recent) > 50 {
			recent = recent[len(recent)-50:]
		}

		for i := 0; i+2 < len(recent); i++ {
			bar0, bar1, bar2 := recent[i], recent[i+1], recent[i+2]

			// Bullish gap between bar0.High and bar2.Low.
			if bar2.Low > bar0.High && bar2.Low-bar0.High >= minGap {
				gaps = append(gaps, models.Fvg{
					Direction: models.DirBullish,
					High:      bar2.Low,
					Low:       bar0.High,
					Midpoint:  (bar2.Low + bar0.High) / 2,
					Timestamp: bar1.Timestamp,
					Timeframe: tf,
					Filled:    currentPrice < bar0.High,
				})
			}

			// Bearish gap between bar2.High and bar0.Low.
			if bar2.High < bar0.Low && bar0.Low-bar2.High >= minGap {
				gaps = append(gaps, models.Fvg{
					Direction: models.DirBearish,
					High:      bar0.Low,
					Low:       bar2.High,
					Midpoint:  (bar0.Low + bar2.High) / 2,
					Timestamp: bar1.Timestamp,
					Timeframe: tf,
					Filled:    currentPrice > bar0.Low,
				})
			}
		}
	}

	var unfilled []models.Fvg
	for _, g := range gaps {
		if !g.Filled {
			unfilled = append(unfilled, g)
		}
	}

	var nearest *models.Fvg
	minDist := math.Inf(1)
	for i := range unfilled {
		dist := math.Abs(unfilled[i].Midpoint - currentPrice)
		if dist < minDist {
			minDist = dist
			nearest = &unfilled[i]
		}
	}

	if len(unfilled) > 10 {
		unfilled = unfilled[len(unfilled)-10:]
	}
	return models.FvgSignal{Gaps: unfilled, NearestUnfilled: nearest}
}
