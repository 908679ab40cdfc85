package engine

import (
	"strings"
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

// steadyBars builds n 15m bars closing at price with a 2-point range, so
// ATR(14) comes out at exactly 2.
func steadyBars(n int, price float64) *models.BarSnapshot {
	start := time.Date(2025, 3, 10, 13, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * 15 * time.Minute),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Timeframe: models.TF15m,
		}
	}
	return &models.BarSnapshot{
		Symbol: "NQ",
		Bars:   map[models.Timeframe][]models.Bar{models.TF15m: bars},
	}
}

func eligibleScore(bias models.TradeBias, confidence int) *models.ScoreResult {
	return &models.ScoreResult{
		Symbol:     "NQ",
		Confidence: confidence,
		Bias:       bias,
		Items:      []models.ChecklistItem{{ID: "cisd", Pass: true, Weight: 12}},
	}
}

func TestRiskApprovesLongBracket(t *testing.T) {
	r := NewRiskEvaluator(DefaultRiskConfig())
	account := &models.AccountState{Cash: 100000, Equity: 100000}
	snap := steadyBars(20, 100)

	d := r.Evaluate(eligibleScore(models.BiasLong, 80), account, snap)
	if !d.Approved {
		t.Fatalf("rejected: %s", d.Reason)
	}
	if d.Order == nil {
		t.Fatal("approved decision carries no order")
	}
	if d.Order.Side != models.SideBuy {
		t.Errorf("side = %s, want buy", d.Order.Side)
	}
	// ATR 2, stop 1.5*ATR below entry 100, target 2R above.
	if d.StopLoss != 97 {
		t.Errorf("stop = %.2f, want 97.00", d.StopLoss)
	}
	if d.TakeProfit != 106 {
		t.Errorf("target = %.2f, want 106.00", d.TakeProfit)
	}
	// Risk budget allows 333 shares, the 5%% notional cap allows 50.
	if d.PositionSize != 50 {
		t.Errorf("qty = %d, want 50", d.PositionSize)
	}
	if !strings.Contains(d.Order.ChecklistSnapshot, `"id":"cisd"`) {
		t.Errorf("checklist snapshot missing items: %s", d.Order.ChecklistSnapshot)
	}
}

func TestRiskShortBracketMirrors(t *testing.T) {
	r := NewRiskEvaluator(DefaultRiskConfig())
	account := &models.AccountState{Cash: 100000, Equity: 100000}
	snap := steadyBars(20, 100)

	d := r.Evaluate(eligibleScore(models.BiasShort, 80), account, snap)
	if !d.Approved {
		t.Fatalf("rejected: %s", d.Reason)
	}
	if d.Order.Side != models.SideSell {
		t.Errorf("side = %s, want sell", d.Order.Side)
	}
	if d.StopLoss != 103 {
		t.Errorf("stop = %.2f, want 103.00", d.StopLoss)
	}
	if d.TakeProfit != 94 {
		t.Errorf("target = %.2f, want 94.00", d.TakeProfit)
	}
}

func TestRiskGateOrder(t *testing.T) {
	r := NewRiskEvaluator(DefaultRiskConfig())
	snap := steadyBars(20, 100)
	account := &models.AccountState{Equity: 100000}

	d := r.Evaluate(eligibleScore(models.BiasLong, 60), account, snap)
	if d.Approved || !strings.Contains(d.Reason, "threshold") {
		t.Errorf("confidence gate: approved=%v reason=%q", d.Approved, d.Reason)
	}

	d = r.Evaluate(eligibleScore(models.BiasNeutral, 90), account, snap)
	if d.Approved || !strings.Contains(d.Reason, "bias") {
		t.Errorf("bias gate: approved=%v reason=%q", d.Approved, d.Reason)
	}

	bleeding := &models.AccountState{Equity: 100000, DayPnl: -2500}
	d = r.Evaluate(eligibleScore(models.BiasLong, 90), bleeding, snap)
	if d.Approved || !strings.Contains(d.Reason, "Daily loss") {
		t.Errorf("daily loss gate: approved=%v reason=%q", d.Approved, d.Reason)
	}

	d = r.Evaluate(eligibleScore(models.BiasLong, 90), account, steadyBars(5, 100))
	if d.Approved || !strings.Contains(d.Reason, "Insufficient bars") {
		t.Errorf("bar count gate: approved=%v reason=%q", d.Approved, d.Reason)
	}
}

func TestRiskRejectsZeroATR(t *testing.T) {
	snap := steadyBars(20, 100)
	flat := snap.Bars[models.TF15m]
	for i := range flat {
		flat[i].High = 100
		flat[i].Low = 100
	}

	r := NewRiskEvaluator(DefaultRiskConfig())
	d := r.Evaluate(eligibleScore(models.BiasLong, 90), &models.AccountState{Equity: 100000}, snap)
	if d.Approved || !strings.Contains(d.Reason, "ATR") {
		t.Errorf("approved=%v reason=%q", d.Approved, d.Reason)
	}
}

func TestRiskRejectsZeroQuantity(t *testing.T) {
	r := NewRiskEvaluator(DefaultRiskConfig())
	tiny := &models.AccountState{Cash: 50, Equity: 50}
	d := r.Evaluate(eligibleScore(models.BiasLong, 90), tiny, steadyBars(20, 100))
	if d.Approved {
		t.Fatal("a 50-dollar account cannot buy a 100-dollar share")
	}
	if !strings.Contains(d.Reason, "zero") {
		t.Errorf("reason = %q", d.Reason)
	}
}

func TestRiskDailyLossExactlyAtLimitStillTrades(t *testing.T) {
	// The gate trips strictly below the limit, not at it.
	r := NewRiskEvaluator(DefaultRiskConfig())
	account := &models.AccountState{Equity: 100000, DayPnl: -2000}
	d := r.Evaluate(eligibleScore(models.BiasLong, 90), account, steadyBars(20, 100))
	if !d.Approved {
		t.Fatalf("rejected at the exact limit: %s", d.Reason)
	}
}
