package analysis

import (
	"math"

	"EdgeRunner/internal/domain/models"
)

// Wick measures the latest 15m candle's wick and body proportions and
// sizes the dominant wick against ATR(14). Large wicks relative to ATR
// read as rejection or a liquidity sweep.
func Wick(snap *models.BarSnapshot) models.WickSignal {
	bars := snap.Series(models.TF15m)
	if len(bars) < 15 {
		return models.WickSignal{BodyRatio: 1, Significance: models.WickLow}
	}

	current := bars[len(bars)-1]
	barRange := current.High - current.Low
	if barRange == 0 {
		return models.WickSignal{Significance: models.WickLow}
	}

	body := math.Abs(current.Close - current.Open)
	var topWick, bottomWick float64
	if current.Close > current.Open {
		topWick = current.High - current.Close
		bottomWick = current.Open - current.Low
	} else {
		topWick = current.High - current.Open
		bottomWick = current.Close - current.Low
	}

	atr14 := ATR(bars[len(bars)-15:], 14)
	maxWick := math.Max(topWick, bottomWick)

	wickToATR := 0.0
	if atr14 > 0 {
		wickToATR = maxWick / atr14
	}

	significance := models.WickLow
	if wickToATR > 0.5 {
		significance = models.WickMedium
	}
	if wickToATR > 0.8 {
		significance = models.WickHigh
	}

	return models.WickSignal{
		TopWickRatio:    round4(topWick / barRange),
		BottomWickRatio: round4(bottomWick / barRange),
		BodyRatio:       round4(body / barRange),
		ATR14:           round4(atr14),
		WickToATRRatio:  round4(wickToATR),
		Significance:    significance,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
