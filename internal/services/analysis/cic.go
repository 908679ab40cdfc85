package analysis

import (
	"math"

	"EdgeRunner/internal/domain/models"
)

// Cic classifies the latest 15m candle against its predecessor:
// C1 expansion, C2 retracement, C3 reversal, C4 inside bar.
func Cic(snap *models.BarSnapshot) models.CicSignal {
	bars := snap.Series(models.TF15m)
	if len(bars) < 3 {
		return models.CicSignal{
			Type:        models.CicInsideBar,
			Timeframe:   models.TF15m,
			Timestamp:   snap.AsOf,
			Description: "Insufficient data",
		}
	}

	current := bars[len(bars)-1]
	prev := bars[len(bars)-2]
	t := classifyCandle(current, prev)

	return models.CicSignal{
		Type:        t,
		Timeframe:   models.TF15m,
		Timestamp:   current.Timestamp,
		Description: cicDescription(t),
	}
}

func classifyCandle(current, prev models.Bar) models.CicType {
	currRange := current.High - current.Low
	prevRange := prev.High - prev.Low
	currBody := math.Abs(current.Close - current.Open)

	// Inside bar wins over everything else.
	if current.High <= prev.High && current.Low >= prev.Low {
		return models.CicInsideBar
	}

	// Expansion: range larger and close beyond a previous extreme.
	if currRange > prevRange && (current.Close > prev.High || current.Close < prev.Low) {
		return models.CicExpansion
	}

	// Reversal: close beyond the opposite extreme of the previous bar.
	prevBullish := prev.Close > prev.Open
	if prevBullish && current.Close < prev.Low {
		return models.CicReversal
	}
	if !prevBullish && current.Close > prev.High {
		return models.CicReversal
	}

	// Retracement: small body closing back inside the previous range.
	if currBody < prevRange*0.5 && current.Close > prev.Low && current.Close < prev.High {
		return models.CicRetracement
	}

	// Any other large move reads as expansion.
	return models.CicExpansion
}

func cicDescription(t models.CicType) string {
	switch t {
	case models.CicExpansion:
		return "Expansion candle - strong directional move"
	case models.CicRetracement:
		return "Retracement candle - pulling back into range"
	case models.CicReversal:
		return "Reversal candle - closes beyond opposite extreme"
	default:
		return "Inside bar - consolidation, coiling"
	}
}
