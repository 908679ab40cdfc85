package analysis

import (
	"math"

	"EdgeRunner/internal/domain/models"
)

// TrueRange of a bar given the previous close.
func TrueRange(bar models.Bar, prevClose float64) float64 {
	return math.Max(bar.High-bar.Low,
		math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
}

// ATR is the simple average of the last `period` true ranges. Needs
// period+1 bars; returns 0 otherwise.
func ATR(bars []models.Bar, period int) float64 {
	if len(bars) < period+1 {
		return 0
	}
	trs := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		trs = append(trs, TrueRange(bars[i], bars[i-1].Close))
	}
	if len(trs) > period {
		trs = trs[len(trs)-period:]
	}
	var sum float64
	for _, v := range trs {
		sum += v
	}
	return sum / float64(len(trs))
}
