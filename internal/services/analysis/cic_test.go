package analysis

import (
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

func cicSnap(prev, current models.Bar) *models.BarSnapshot {
	first := models.Bar{
		Timestamp: testStart,
		Open:      100, High: 101, Low: 99, Close: 100,
		Timeframe: models.TF15m,
	}
	prev.Timestamp = testStart.Add(15 * time.Minute)
	prev.Timeframe = models.TF15m
	current.Timestamp = testStart.Add(30 * time.Minute)
	current.Timeframe = models.TF15m
	return snap15([]models.Bar{first, prev, current})
}

func TestCicInsufficientData(t *testing.T) {
	snap := snap15(flatBars(2, 100, 0.5, 15*time.Minute, models.TF15m))
	sig := Cic(snap)
	if sig.Type != models.CicInsideBar {
		t.Errorf("type = %s, want C4", sig.Type)
	}
	if sig.Description != "Insufficient data" {
		t.Errorf("description = %q", sig.Description)
	}
}

func TestCicClassification(t *testing.T) {
	tests := []struct {
		name    string
		prev    models.Bar
		current models.Bar
		want    models.CicType
	}{
		{
			name:    "inside bar wins over everything",
			prev:    models.Bar{Open: 100, High: 110, Low: 100, Close: 108},
			current: models.Bar{Open: 104, High: 106, Low: 102, Close: 105},
			want:    models.CicInsideBar,
		},
		{
			name:    "expansion above previous high",
			prev:    models.Bar{Open: 100, High: 102, Low: 100, Close: 101},
			current: models.Bar{Open: 101, High: 105, Low: 99, Close: 104.5},
			want:    models.CicExpansion,
		},
		{
			name:    "reversal closes below previous low without range expansion",
			prev:    models.Bar{Open: 100, High: 103, Low: 99, Close: 102},
			current: models.Bar{Open: 101, High: 101.5, Low: 98.2, Close: 98.8},
			want:    models.CicReversal,
		},
		{
			name:    "retracement closes back inside range with small body",
			prev:    models.Bar{Open: 100, High: 103, Low: 99, Close: 102},
			current: models.Bar{Open: 102, High: 103.5, Low: 101, Close: 101.5},
			want:    models.CicRetracement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Cic(cicSnap(tt.prev, tt.current))
			if sig.Type != tt.want {
				t.Errorf("type = %s, want %s", sig.Type, tt.want)
			}
		})
	}
}
