package analysis

import (
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

func TestSmtWithoutPeer(t *testing.T) {
	snap := snap15(flatBars(12, 100, 0.5, 15*time.Minute, models.TF15m))
	sig := Smt(snap, nil)
	if sig.Detected {
		t.Fatal("detected divergence without a peer")
	}
	if sig.SymbolB != "N/A" {
		t.Errorf("peer symbol = %q, want N/A", sig.SymbolB)
	}
}

func TestSmtInsufficientData(t *testing.T) {
	snap := snap15(flatBars(12, 100, 0.5, 15*time.Minute, models.TF15m))
	peer := snap15(flatBars(5, 100, 0.5, 15*time.Minute, models.TF15m))
	peer.Symbol = "ES"

	sig := Smt(snap, peer)
	if sig.Detected {
		t.Fatal("detected divergence with a 5-bar peer")
	}
	if sig.Description != "Insufficient data for SMT comparison" {
		t.Errorf("description = %q", sig.Description)
	}
}

func TestSmtBullishDivergence(t *testing.T) {
	// Subject sweeps to a lower low over the last 5 bars, the peer holds.
	bars := flatBars(10, 100, 0.5, 15*time.Minute, models.TF15m)
	bars[7].Low = 98

	peer := snap15(flatBars(10, 100, 0.5, 15*time.Minute, models.TF15m))
	peer.Symbol = "ES"

	sig := Smt(snap15(bars), peer)
	if !sig.Detected {
		t.Fatal("bullish divergence not detected")
	}
	if sig.DivergenceType != models.DirBullish {
		t.Errorf("type = %s, want bullish", sig.DivergenceType)
	}
	if sig.SymbolA != "NQ" || sig.SymbolB != "ES" {
		t.Errorf("symbols = %s/%s", sig.SymbolA, sig.SymbolB)
	}
}

func TestSmtBearishDivergence(t *testing.T) {
	bars := flatBars(10, 100, 0.5, 15*time.Minute, models.TF15m)
	bars[8].High = 102

	peer := snap15(flatBars(10, 100, 0.5, 15*time.Minute, models.TF15m))
	peer.Symbol = "ES"

	sig := Smt(snap15(bars), peer)
	if !sig.Detected {
		t.Fatal("bearish divergence not detected")
	}
	if sig.DivergenceType != models.DirBearish {
		t.Errorf("type = %s, want bearish", sig.DivergenceType)
	}
}

func TestSmtConfirmedMoveIsNoDivergence(t *testing.T) {
	// Both symbols make the lower low together.
	bars := flatBars(10, 100, 0.5, 15*time.Minute, models.TF15m)
	bars[7].Low = 98
	peerBars := flatBars(10, 100, 0.5, 15*time.Minute, models.TF15m)
	peerBars[8].Low = 97.5
	peer := snap15(peerBars)
	peer.Symbol = "ES"

	sig := Smt(snap15(bars), peer)
	if sig.Detected {
		t.Fatalf("divergence on a confirmed move: %+v", sig)
	}
}
