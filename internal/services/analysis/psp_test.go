package analysis

import (
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

func TestPspNeedsTenBars(t *testing.T) {
	snap := snap15(flatBars(9, 100, 0.5, 15*time.Minute, models.TF15m))
	sig := Psp(snap, 100)
	if sig.HasProtectedHigh || sig.HasProtectedLow {
		t.Fatal("protected points reported with under 10 bars")
	}
}

func TestPspProtectedAndBrokenSwings(t *testing.T) {
	bars := flatBars(20, 100, 0.5, 15*time.Minute, models.TF15m)
	bars[5].High = 103  // stays protected
	bars[8].High = 101.5
	bars[12].Low = 97 // stays protected
	// Closing above 101.5 breaks that swing; 103 survives.
	bars[15].Open = 100
	bars[15].Close = 102
	bars[15].High = 102.1
	bars[15].Low = 100

	sig := Psp(snap15(bars), 100)
	if !sig.HasProtectedHigh {
		t.Fatal("no protected high found")
	}
	// The bar that broke 101.5 printed its own swing at 102.1, which is
	// nearer than 103.
	if sig.NearestProtectedHigh != 102.1 {
		t.Errorf("nearest protected high = %.2f, want 102.10", sig.NearestProtectedHigh)
	}
	if !sig.HasProtectedLow {
		t.Fatal("no protected low found")
	}
	if sig.NearestProtectedLow != 97 {
		t.Errorf("nearest protected low = %.2f, want 97.00", sig.NearestProtectedLow)
	}

	for _, s := range sig.SwingHighs {
		if s.Price == 101.5 && s.Protected {
			t.Error("swing at 101.50 marked protected after a close above it")
		}
	}
}
