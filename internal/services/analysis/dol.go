package analysis

import (
	"math"

	"EdgeRunner/internal/domain/models"
)

type dolTarget struct {
	price float64
	label string
}

// Dol picks the nearest liquidity target: key levels merged with 1h
// swing highs/lows (1-bar pivot window). Candidates are scanned in
// insertion order and the first strictly smaller non-zero distance wins,
// so exactly equidistant targets resolve to the earlier-inserted one.
func Dol(snap *models.BarSnapshot, currentPrice float64) models.DolSignal {
	levels := KeyLevels(snap, currentPrice)

	targets := make([]dolTarget, 0, len(levels.Levels)+8)
	for _, l := range levels.Levels {
		targets = append(targets, dolTarget{price: l.Price, label: l.Label})
	}

	hourly := snap.Series(models.TF1h)
	if len(hourly) >= 10 {
		for i := 2; i < len(hourly)-2; i++ {
			b := hourly[i]
			if b.High > hourly[i-1].High && b.High > hourly[i+1].High {
				targets = append(targets, dolTarget{price: b.High, label: "Swing High (1h)"})
			}
			if b.Low < hourly[i-1].Low && b.Low < hourly[i+1].Low {
				targets = append(targets, dolTarget{price: b.Low, label: "Swing Low (1h)"})
			}
		}
	}

	if len(targets) == 0 {
		return models.DolSignal{TargetLabel: "None"}
	}

	nearest := targets[0]
	minDist := math.Abs(targets[0].price - currentPrice)
	for _, t := range targets {
		dist := math.Abs(t.price - currentPrice)
		if dist < minDist && dist > 0 {
			minDist = dist
			nearest = t
		}
	}

	direction := models.DolBelow
	if nearest.price > currentPrice {
		direction = models.DolAbove
	}
	distancePct := 0.0
	if currentPrice > 0 {
		distancePct = minDist / currentPrice * 100
	}

	return models.DolSignal{
		Target:          nearest.price,
		HasTarget:       true,
		TargetLabel:     nearest.label,
		Direction:       direction,
		Distance:        math.Round(minDist*100) / 100,
		DistancePercent: math.Round(distancePct*100) / 100,
	}
}
