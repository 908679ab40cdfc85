package analysis

import (
	"math"

	"EdgeRunner/internal/domain/models"
)

// Vshape looks for a sharp reversal in the last 10 bars of the 15m
// series. A bullish V needs the extreme low strictly inside the window,
// positive drop and bounce around it, and min/max symmetry above 0.4.
// Bearish is the mirror on the extreme high.
func Vshape(snap *models.BarSnapshot) models.VshapeSignal {
	bars := snap.Series(models.TF15m)
	if len(bars) < 10 {
		return models.VshapeSignal{}
	}

	recent := bars[len(bars)-10:]

	lowestIdx, highestIdx := 0, 0
	for i := 1; i < len(recent); i++ {
		if recent[i].Low < recent[lowestIdx].Low {
			lowestIdx = i
		}
		if recent[i].High > recent[highestIdx].High {
			highestIdx = i
		}
	}

	// Bullish V: drop into the pivot, then a comparable bounce out of it.
	if lowestIdx > 1 && lowestIdx < len(recent)-2 {
		avgBefore := avgClose(recent[:lowestIdx])
		avgAfter := avgClose(recent[lowestIdx+1:])
		pivot := recent[lowestIdx].Low

		dropSize := avgBefore - pivot
		bounceSize := avgAfter - pivot
		if dropSize > 0 && bounceSize > 0 {
			symmetry := math.Min(dropSize, bounceSize) / math.Max(dropSize, bounceSize)
			if symmetry > 0.4 {
				vRange := recent[highestIdx].High - pivot
				strength := math.Min(100, bounceSize/vRange*100)
				return models.VshapeSignal{
					Detected:   true,
					Direction:  models.DirBullish,
					PivotPrice: pivot,
					Timestamp:  recent[lowestIdx].Timestamp,
					Strength:   int(math.Round(strength)),
				}
			}
		}
	}

	// Bearish V: rally into the pivot, then a comparable drop.
	if highestIdx > 1 && highestIdx < len(recent)-2 {
		avgBefore := avgClose(recent[:highestIdx])
		avgAfter := avgClose(recent[highestIdx+1:])
		pivot := recent[highestIdx].High

		rallySize := pivot - avgBefore
		dropSize := pivot - avgAfter
		if rallySize > 0 && dropSize > 0 {
			symmetry := math.Min(rallySize, dropSize) / math.Max(rallySize, dropSize)
			if symmetry > 0.4 {
				vRange := pivot - recent[lowestIdx].Low
				strength := math.Min(100, dropSize/vRange*100)
				return models.VshapeSignal{
					Detected:   true,
					Direction:  models.DirBearish,
					PivotPrice: pivot,
					Timestamp:  recent[highestIdx].Timestamp,
					Strength:   int(math.Round(strength)),
				}
			}
		}
	}

	return models.VshapeSignal{}
}

func avgClose(bars []models.Bar) float64 {
	var sum float64
	for _, b := range bars {
		sum += b.Close
	}
	return sum / float64(len(bars))
}
