package analysis

import "EdgeRunner/internal/domain/models"

// DailyProfile determines whether today's daily candle is forming OHLC
// (high before low, bearish) or OLHC (low before high, bullish), using the
// 1h bars of the current date to order the extremes. Ties and missing
// intraday data fall back to close-vs-open.
func DailyProfile(snap *models.BarSnapshot) models.DailyProfileSignal {
	daily := snap.Series(models.TF1d)
	if len(daily) < 2 {
		return models.DailyProfileSignal{
			Type: models.ProfileOLHC,
			Date: snap.AsOf.Format("2006-01-02"),
			Bias: models.DirBullish,
		}
	}

	today := daily[len(daily)-1]
	todayDate := today.Timestamp.Format("2006-01-02")

	hourly := snap.Series(models.TF1h)
	if len(hourly) >= 4 {
		var todayHourly []models.Bar
		for _, b := range hourly {
			if b.Timestamp.Format("2006-01-02") == todayDate {
				todayHourly = append(todayHourly, b)
			}
		}

		if len(todayHourly) >= 2 {
			highIdx, lowIdx := 0, 0
			for i := 1; i < len(todayHourly); i++ {
				if todayHourly[i].High > todayHourly[highIdx].High {
					highIdx = i
				}
				if todayHourly[i].Low < todayHourly[lowIdx].Low {
					lowIdx = i
				}
			}

			if highIdx < lowIdx {
				return models.DailyProfileSignal{Type: models.ProfileOHLC, Date: todayDate, Bias: models.DirBearish}
			}
			return models.DailyProfileSignal{Type: models.ProfileOLHC, Date: todayDate, Bias: models.DirBullish}
		}
	}

	bias := models.DirBullish
	profile := models.ProfileOLHC
	if today.Close < today.Open {
		bias = models.DirBearish
		profile = models.ProfileOHLC
	}
	return models.DailyProfileSignal{Type: profile, Date: todayDate, Bias: bias}
}
