package analysis

import (
	"sort"

	"EdgeRunner/internal/domain/models"
)

// Psp finds protected swing points on the 15m series: pivots no
// subsequent close has traded through. Reports the last 10 swings of
// each polarity and the nearest protected high above / low below price.
func Psp(snap *models.BarSnapshot, currentPrice float64) models.PspSignal {
	bars := snap.Series(models.TF15m)
	if len(bars) < 10 {
		return models.PspSignal{}
	}

	var highs, lows []models.SwingPoint
	for i := 2; i < len(bars)-2; i++ {
		b := bars[i]
		if isSwingHigh(bars, i) {
			broken := false
			for _, sb := range bars[i+1:] {
				if sb.Close > b.High {
					broken = true
					break
				}
			}
			highs = append(highs, models.SwingPoint{Price: b.High, Timestamp: b.Timestamp, Protected: !broken})
		}
		if isSwingLow(bars, i) {
			broken := false
			for _, sb := range bars[i+1:] {
				if sb.Close < b.Low {
					broken = true
					break
				}
			}
			lows = append(lows, models.SwingPoint{Price: b.Low, Timestamp: b.Timestamp, Protected: !broken})
		}
	}

	var protectedHighs, protectedLows []models.SwingPoint
	for _, s := range highs {
		if s.Protected && s.Price > currentPrice {
			protectedHighs = append(protectedHighs, s)
		}
	}
	for _, s := range lows {
		if s.Protected && s.Price < currentPrice {
			protectedLows = append(protectedLows, s)
		}
	}
	sort.Slice(protectedHighs, func(i, j int) bool { return protectedHighs[i].Price < protectedHighs[j].Price })
	sort.Slice(protectedLows, func(i, j int) bool { return protectedLows[i].Price > protectedLows[j].Price })

	sig := models.PspSignal{
		SwingHighs: lastN(highs, 10),
		SwingLows:  lastN(lows, 10),
	}
	if len(protectedHighs) > 0 {
		sig.NearestProtectedHigh = protectedHighs[0].Price
		sig.HasProtectedHigh = true
	}
	if len(protectedLows) > 0 {
		sig.NearestProtectedLow = protectedLows[0].Price
		sig.HasProtectedLow = true
	}
	return sig
}

func lastN(points []models.SwingPoint, n int) []models.SwingPoint {
	if len(points) > n {
		return points[len(points)-n:]
	}
	return points
}
