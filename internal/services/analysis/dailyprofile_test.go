package analysis

import (
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

func dailyPair(todayOpen, todayClose float64) []models.Bar {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return []models.Bar{
		{Timestamp: day.AddDate(0, 0, -1), Open: 100, High: 102, Low: 98, Close: 101, Timeframe: models.TF1d},
		{Timestamp: day, Open: todayOpen, High: 103, Low: 97, Close: todayClose, Timeframe: models.TF1d},
	}
}

func hourOn(day time.Time, hour int, high, low float64) models.Bar {
	return models.Bar{
		Timestamp: day.Add(time.Duration(hour) * time.Hour),
		Open:      (high + low) / 2, High: high, Low: low, Close: (high + low) / 2,
		Timeframe: models.TF1h,
	}
}

func TestDailyProfileDefaultsBullishWithoutHistory(t *testing.T) {
	snap := snapOf(map[models.Timeframe][]models.Bar{
		models.TF1d: {{Timestamp: testStart, Open: 100, Close: 99, Timeframe: models.TF1d}},
	})
	sig := DailyProfile(snap)
	if sig.Type != models.ProfileOLHC || sig.Bias != models.DirBullish {
		t.Errorf("got %s/%s, want OLHC/bullish", sig.Type, sig.Bias)
	}
}

func TestDailyProfileHighBeforeLowIsOHLC(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := snapOf(map[models.Timeframe][]models.Bar{
		models.TF1d: dailyPair(100, 101),
		models.TF1h: {
			hourOn(day, 9, 110, 105),
			hourOn(day, 10, 106, 101),
			hourOn(day, 11, 103, 98),
			hourOn(day, 12, 99, 90),
		},
	})
	sig := DailyProfile(snap)
	if sig.Type != models.ProfileOHLC {
		t.Errorf("type = %s, want OHLC", sig.Type)
	}
	if sig.Bias != models.DirBearish {
		t.Errorf("bias = %s, want bearish", sig.Bias)
	}
}

func TestDailyProfileLowBeforeHighIsOLHC(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	snap := snapOf(map[models.Timeframe][]models.Bar{
		models.TF1d: dailyPair(100, 99),
		models.TF1h: {
			hourOn(day, 9, 99, 90),
			hourOn(day, 10, 103, 98),
			hourOn(day, 11, 106, 101),
			hourOn(day, 12, 110, 105),
		},
	})
	sig := DailyProfile(snap)
	if sig.Type != models.ProfileOLHC {
		t.Errorf("type = %s, want OLHC", sig.Type)
	}
	if sig.Bias != models.DirBullish {
		t.Errorf("bias = %s, want bullish", sig.Bias)
	}
}

func TestDailyProfileFallsBackToCloseVsOpen(t *testing.T) {
	snap := snapOf(map[models.Timeframe][]models.Bar{
		models.TF1d: dailyPair(100, 98),
	})
	sig := DailyProfile(snap)
	if sig.Type != models.ProfileOHLC || sig.Bias != models.DirBearish {
		t.Errorf("got %s/%s, want OHLC/bearish from close below open", sig.Type, sig.Bias)
	}
}
