package analysis

import (
	"fmt"

	"EdgeRunner/internal/domain/models"
)

// Smt compares the subject symbol's recent swing extremes against a
// correlated peer. Bullish divergence: subject makes a new 5-bar low the
// peer does not confirm; bearish is the mirror on highs. The peer
// snapshot is optional; without it the signal is simply not detected.
func Smt(snap *models.BarSnapshot, peer *models.BarSnapshot) models.SmtSignal {
	if peer == nil {
		return models.SmtSignal{
			SymbolA:     snap.Symbol,
			SymbolB:     "N/A",
			Description: "No peer symbol data available for SMT comparison",
		}
	}

	barsA := snap.Series(models.TF15m)
	barsB := peer.Series(models.TF15m)
	if len(barsA) < 10 || len(barsB) < 10 {
		return models.SmtSignal{
			SymbolA:     snap.Symbol,
			SymbolB:     peer.Symbol,
			Description: "Insufficient data for SMT comparison",
		}
	}

	recentA := barsA[len(barsA)-5:]
	prevA := barsA[len(barsA)-10 : len(barsA)-5]
	recentB := barsB[len(barsB)-5:]
	prevB := barsB[len(barsB)-10 : len(barsB)-5]

	prevLowA, prevHighA := extremes(prevA)
	recentLowA, recentHighA := extremes(recentA)
	prevLowB, prevHighB := extremes(prevB)
	recentLowB, recentHighB := extremes(recentB)

	if recentLowA < prevLowA && recentLowB >= prevLowB {
		return models.SmtSignal{
			Detected:       true,
			SymbolA:        snap.Symbol,
			SymbolB:        peer.Symbol,
			DivergenceType: models.DirBullish,
			Description:    fmt.Sprintf("%s made lower low but %s held - bullish divergence", snap.Symbol, peer.Symbol),
		}
	}

	if recentHighA > prevHighA && recentHighB <= prevHighB {
		return models.SmtSignal{
			Detected:       true,
			SymbolA:        snap.Symbol,
			SymbolB:        peer.Symbol,
			DivergenceType: models.DirBearish,
			Description:    fmt.Sprintf("%s made higher high but %s failed - bearish divergence", snap.Symbol, peer.Symbol),
		}
	}

	return models.SmtSignal{
		SymbolA:     snap.Symbol,
		SymbolB:     peer.Symbol,
		Description: "No SMT divergence detected",
	}
}

func extremes(bars []models.Bar) (low, high float64) {
	low, high = bars[0].Low, bars[0].High
	for _, b := range bars[1:] {
		if b.Low < low {
			low = b.Low
		}
		if b.High > high {
			high = b.High
		}
	}
	return low, high
}
