package analysis

import (
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

func TestCisdNeedsTwentyBars(t *testing.T) {
	snap := snap15(flatBars(19, 100, 0.5, 15*time.Minute, models.TF15m))
	if sig := Cisd(snap); sig.Detected {
		t.Fatal("detected CISD with under 20 bars")
	}
}

func TestCisdBullishCloseThroughSwingHigh(t *testing.T) {
	bars := flatBars(25, 100, 0.5, 15*time.Minute, models.TF15m)
	bars[10].High = 102 // swing high, never closed above until the last bar
	bars[24].Close = 102.5
	bars[24].High = 102.6

	sig := Cisd(snap15(bars))
	if !sig.Detected {
		t.Fatal("bullish CISD not detected")
	}
	if sig.Direction != models.DirBullish {
		t.Errorf("direction = %s, want bullish", sig.Direction)
	}
	if sig.SwingBroken != 102 {
		t.Errorf("swing broken = %.2f, want 102.00", sig.SwingBroken)
	}
	if sig.ClosePrice != 102.5 {
		t.Errorf("close = %.2f, want 102.50", sig.ClosePrice)
	}
}

func TestCisdBearishCloseThroughSwingLow(t *testing.T) {
	bars := flatBars(25, 100, 0.5, 15*time.Minute, models.TF15m)
	bars[10].Low = 98
	bars[24].Close = 97.5
	bars[24].Low = 97.4

	sig := Cisd(snap15(bars))
	if !sig.Detected {
		t.Fatal("bearish CISD not detected")
	}
	if sig.Direction != models.DirBearish {
		t.Errorf("direction = %s, want bearish", sig.Direction)
	}
	if sig.SwingBroken != 98 {
		t.Errorf("swing broken = %.2f, want 98.00", sig.SwingBroken)
	}
}

func TestCisdRequiresFreshBreak(t *testing.T) {
	// Both the current and previous closes already sit above the swing, so
	// the state change happened earlier and must not re-trigger.
	bars := flatBars(25, 100, 0.5, 15*time.Minute, models.TF15m)
	bars[10].High = 102
	bars[23].Close = 102.5
	bars[23].High = 102.6
	bars[24].Close = 102.7
	bars[24].High = 102.8

	if sig := Cisd(snap15(bars)); sig.Detected {
		t.Fatalf("re-triggered on an old break: %+v", sig)
	}
}
