package analysis

import "EdgeRunner/internal/domain/models"

// pivot detection with a symmetric 2-bar lookback/lookforward window.
// A swing high at i is strictly above the highs of i-2..i+2 (excluding i),
// mirrored for swing lows.

func isSwingHigh(bars []models.Bar, i int) bool {
	b := bars[i]
	return b.High > bars[i-1].High && b.High > bars[i-2].High &&
		b.High > bars[i+1].High && b.High > bars[i+2].High
}

func isSwingLow(bars []models.Bar, i int) bool {
	b := bars[i]
	return b.Low < bars[i-1].Low && b.Low < bars[i-2].Low &&
		b.Low < bars[i+1].Low && b.Low < bars[i+2].Low
}

// swingHighs returns the prices of all swing highs in order of appearance.
func swingHighs(bars []models.Bar) []float64 {
	var out []float64
	for i := 2; i < len(bars)-2; i++ {
		if isSwingHigh(bars, i) {
			out = append(out, bars[i].High)
		}
	}
	return out
}

// swingLows returns the prices of all swing lows in order of appearance.
func swingLows(bars []models.Bar) []float64 {
	var out []float64
	for i := 2; i < len(bars)-2; i++ {
		if isSwingLow(bars, i) {
			out = append(out, bars[i].Low)
		}
	}
	return out
}
