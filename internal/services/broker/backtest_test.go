package broker

import (
	"context"
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

func btBar(ts time.Time, o, h, l, c float64) models.Bar {
	return models.Bar{Timestamp: ts, Open: o, High: h, Low: l, Close: c, Timeframe: models.TF15m}
}

func buyOrder(qty int, stop, target float64) *models.OrderRequest {
	return &models.OrderRequest{
		Symbol: "NQ", Side: models.SideBuy, Qty: qty, Type: models.OrderMarket,
		StopLossPrice: stop, TakeProfitPrice: target,
	}
}

func TestBacktestOrderRestsUntilNextBarOpen(t *testing.T) {
	b := NewBacktestBroker("NQ", 100000)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	res, err := b.PlaceOrder(ctx, buyOrder(2, 95, 110))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != models.OrderPending {
		t.Fatalf("status = %s, want pending", res.Status)
	}

	positions, _ := b.GetPositions(ctx)
	if len(positions) != 0 {
		t.Fatal("position open before any bar was processed")
	}

	b.ProcessBar(btBar(start, 100, 101, 99, 100.5), 0)
	positions, _ = b.GetPositions(ctx)
	if len(positions) != 1 {
		t.Fatal("order did not fill on the next bar")
	}
	if positions[0].AvgEntryPrice != 100 {
		t.Errorf("entry = %.2f, want the bar open 100.00", positions[0].AvgEntryPrice)
	}
}

func TestBacktestRejectsWhileExposed(t *testing.T) {
	b := NewBacktestBroker("NQ", 100000)
	ctx := context.Background()

	if _, err := b.PlaceOrder(ctx, buyOrder(1, 95, 110)); err != nil {
		t.Fatal(err)
	}
	res, _ := b.PlaceOrder(ctx, buyOrder(1, 95, 110))
	if res.Status != models.OrderRejected {
		t.Fatalf("second order status = %s, want rejected while one rests", res.Status)
	}

	b.ProcessBar(btBar(time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), 100, 101, 99, 100), 0)
	res, _ = b.PlaceOrder(ctx, buyOrder(1, 95, 110))
	if res.Status != models.OrderRejected {
		t.Fatalf("order status = %s, want rejected while position open", res.Status)
	}
}

func TestBacktestTakeProfitWithMultiplier(t *testing.T) {
	b := NewBacktestBroker("NQ", 100000)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	b.PlaceOrder(ctx, buyOrder(2, 95, 110))
	b.ProcessBar(btBar(start, 100, 101, 99, 100.5), 0)
	b.ProcessBar(btBar(start.Add(15*time.Minute), 102, 111, 101, 110.5), 1)

	trades := b.Trades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	tr := trades[0]
	if tr.ExitPrice != 110 {
		t.Errorf("exit = %.2f, want the target 110.00", tr.ExitPrice)
	}
	// 10 points x 2 contracts x $20/pt.
	if tr.Pnl != 400 {
		t.Errorf("pnl = %.2f, want 400.00", tr.Pnl)
	}
	if tr.RMultiple != 2 {
		t.Errorf("r-multiple = %.2f, want 2.00", tr.RMultiple)
	}
	if tr.BarsHeld != 1 {
		t.Errorf("bars held = %d, want 1", tr.BarsHeld)
	}

	account, _ := b.GetAccount(ctx)
	if account.Cash != 100400 {
		t.Errorf("cash = %.2f, want 100400.00", account.Cash)
	}
}

func TestBacktestStopBeatsTargetOnSameBar(t *testing.T) {
	b := NewBacktestBroker("NQ", 100000)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	b.PlaceOrder(ctx, buyOrder(2, 95, 101))
	b.ProcessBar(btBar(start, 100, 100.5, 99, 100), 0)
	// Both levels inside this bar's range; assume the low came first.
	b.ProcessBar(btBar(start.Add(15*time.Minute), 100, 102, 94, 101), 1)

	trades := b.Trades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].ExitPrice != 95 {
		t.Errorf("exit = %.2f, want the stop 95.00", trades[0].ExitPrice)
	}
	if trades[0].Pnl != -200 {
		t.Errorf("pnl = %.2f, want -200.00", trades[0].Pnl)
	}
}

func TestBacktestShortSide(t *testing.T) {
	b := NewBacktestBroker("ES", 100000)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	b.PlaceOrder(ctx, &models.OrderRequest{
		Symbol: "ES", Side: models.SideSell, Qty: 1, Type: models.OrderMarket,
		StopLossPrice: 103, TakeProfitPrice: 94,
	})
	b.ProcessBar(btBar(start, 100, 101, 99, 100), 0)
	b.ProcessBar(btBar(start.Add(15*time.Minute), 99, 99.5, 93.5, 94.2), 1)

	trades := b.Trades()
	if len(trades) != 1 {
		t.Fatalf("got %d trades, want 1", len(trades))
	}
	if trades[0].ExitPrice != 94 {
		t.Errorf("exit = %.2f, want the target 94.00", trades[0].ExitPrice)
	}
	// 6 points x $50/pt.
	if trades[0].Pnl != 300 {
		t.Errorf("pnl = %.2f, want 300.00", trades[0].Pnl)
	}
	if trades[0].RMultiple != 2 {
		t.Errorf("r-multiple = %.2f, want 2.00", trades[0].RMultiple)
	}
}

func TestBacktestDayPnlResetsOnNewDate(t *testing.T) {
	b := NewBacktestBroker("NQ", 100000)
	ctx := context.Background()
	day1 := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	b.PlaceOrder(ctx, buyOrder(1, 95, 110))
	b.ProcessBar(btBar(day1, 100, 101, 99, 100), 0)
	b.ProcessBar(btBar(day1.Add(15*time.Minute), 99, 99.5, 94, 95.5), 1)

	account, _ := b.GetAccount(ctx)
	if account.DayPnl != -100 {
		t.Fatalf("day pnl = %.2f, want -100.00", account.DayPnl)
	}

	b.ProcessBar(btBar(day1.AddDate(0, 0, 1), 100, 101, 99, 100), 2)
	account, _ = b.GetAccount(ctx)
	if account.DayPnl != 0 {
		t.Errorf("day pnl = %.2f, want 0 after the date rolled", account.DayPnl)
	}
	if account.TotalPnl != -100 {
		t.Errorf("total pnl = %.2f, want -100.00", account.TotalPnl)
	}
}

func TestBacktestForceClose(t *testing.T) {
	b := NewBacktestBroker("NQ", 100000)
	ctx := context.Background()
	start := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	b.PlaceOrder(ctx, buyOrder(1, 90, 120))
	b.ProcessBar(btBar(start, 100, 101, 99, 100), 0)
	b.ProcessBar(btBar(start.Add(15*time.Minute), 101, 103, 100, 103), 1)

	b.ForceClose(103, start.Add(30*time.Minute))
	if b.HasOpenExposure() {
		t.Fatal("exposure remains after force close")
	}
	trades := b.Trades()
	if len(trades) != 1 || trades[0].ExitPrice != 103 {
		t.Fatalf("trades = %+v, want one exit at 103.00", trades)
	}
	if trades[0].Pnl != 60 {
		t.Errorf("pnl = %.2f, want 60.00", trades[0].Pnl)
	}
}
