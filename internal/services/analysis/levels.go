package analysis

import (
	"sort"
	"time"

	"EdgeRunner/internal/domain/models"
)

// KeyLevels computes the reference levels traders anchor to: previous
// day high/low, today's open, previous calendar-week high/low and
// previous calendar-month high/low, sorted ascending by price.
// Week and month boundaries are derived from the snapshot instant, never
// from the wall clock, so backtests see the same levels a live run would
// have seen at that moment.
func KeyLevels(snap *models.BarSnapshot, currentPrice float64) models.KeyLevelsSignal {
	daily := snap.Series(models.TF1d)
	var levels []models.KeyLevel

	if len(daily) >= 2 {
		yesterday := daily[len(daily)-2]
		today := daily[len(daily)-1]
		levels = append(levels,
			models.KeyLevel{Label: "PDH", Price: yesterday.High, Type: models.LevelPDH},
			models.KeyLevel{Label: "PDL", Price: yesterday.Low, Type: models.LevelPDL},
			models.KeyLevel{Label: "DO", Price: today.Open, Type: models.LevelOpen},
		)
	}

	if len(daily) >= 10 {
		if weekBars := previousWeekBars(daily, snap.AsOf); len(weekBars) > 0 {
			pwh, pwl := rangeOf(weekBars)
			levels = append(levels,
				models.KeyLevel{Label: "PWH", Price: pwh, Type: models.LevelPWH},
				models.KeyLevel{Label: "PWL", Price: pwl, Type: models.LevelPWL},
			)
		}
	}

	if len(daily) >= 30 {
		if monthBars := previousMonthBars(daily, snap.AsOf); len(monthBars) > 0 {
			pmh, pml := rangeOf(monthBars)
			levels = append(levels,
				models.KeyLevel{Label: "PMH", Price: pmh, Type: models.LevelPMH},
				models.KeyLevel{Label: "PML", Price: pml, Type: models.LevelPML},
			)
		}
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].Price < levels[j].Price })

	var nearestAbove, nearestBelow *models.KeyLevel
	for i := range levels {
		l := levels[i]
		if l.Price > currentPrice && nearestAbove == nil {
			nearestAbove = &levels[i]
		}
		if l.Price < currentPrice {
			nearestBelow = &levels[i]
		}
	}

	return models.KeyLevelsSignal{
		Levels:       levels,
		NearestAbove: nearestAbove,
		NearestBelow: nearestBelow,
		CurrentPrice: currentPrice,
	}
}

func rangeOf(bars []models.Bar) (high, low float64) {
	high, low = bars[0].High, bars[0].Low
	for _, b := range bars[1:] {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
	}
	return high, low
}

// previousWeekBars selects daily bars from the calendar week before the
// week containing asOf (weeks start Sunday).
func previousWeekBars(daily []models.Bar, asOf time.Time) []models.Bar {
	y, m, d := asOf.UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	startOfThisWeek := midnight.AddDate(0, 0, -int(midnight.Weekday()))
	startOfLastWeek := startOfThisWeek.AddDate(0, 0, -7)

	var out []models.Bar
	for _, b := range daily {
		if !b.Timestamp.Before(startOfLastWeek) && b.Timestamp.Before(startOfThisWeek) {
			out = append(out, b)
		}
	}
	return out
}

// previousMonthBars selects daily bars from the calendar month before the
// month containing asOf.
func previousMonthBars(daily []models.Bar, asOf time.Time) []models.Bar {
	y, m, _ := asOf.UTC().Date()
	startOfThisMonth := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	startOfLastMonth := startOfThisMonth.AddDate(0, -1, 0)

	var out []models.Bar
	for _, b := range daily {
		if !b.Timestamp.Before(startOfLastMonth) && b.Timestamp.Before(startOfThisMonth) {
			out = append(out, b)
		}
	}
	return out
}
