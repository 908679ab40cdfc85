package analysis

import "EdgeRunner/internal/domain/models"

// Cisd detects a change in state of delivery on the 15m series: the
// current close crossing a swing level the previous close had not yet
// cleared. Only the 5 most recent swings of each polarity are checked.
func Cisd(snap *models.BarSnapshot) models.CisdSignal {
	bars := snap.Series(models.TF15m)
	if len(bars) < 20 {
		return models.CisdSignal{}
	}

	highs := swingHighs(bars)
	lows := swingLows(bars)

	current := bars[len(bars)-1]
	prev := bars[len(bars)-2]

	// Bullish: close through a recent swing high.
	lo := len(highs) - 5
	if lo < 0 {
		lo = 0
	}
	for i := len(highs) - 1; i >= lo; i-- {
		if current.Close > highs[i] && prev.Close <= highs[i] {
			return models.CisdSignal{
				Detected:    true,
				Direction:   models.DirBullish,
				SwingBroken: highs[i],
				ClosePrice:  current.Close,
				Timestamp:   current.Timestamp,
			}
		}
	}

	// Bearish: close through a recent swing low.
	lo = len(lows) - 5
	if lo < 0 {
		lo = 0
	}
	for i := len(lows) - 1; i >= lo; i-- {
		if current.Close < lows[i] && prev.Close >= lows[i] {
			return models.CisdSignal{
				Detected:    true,
				Direction:   models.DirBearish,
				SwingBroken: lows[i],
				ClosePrice:  current.Close,
				Timestamp:   current.Timestamp,
			}
		}
	}

	return models.CisdSignal{}
}
