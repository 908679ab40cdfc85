// Package broker contains the order execution side: a bar-driven
// backtest broker and a quote-driven paper broker for live runs.
package broker

import (
	"context"
	"fmt"
	"math"
	"time"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/domain/repository"
	"EdgeRunner/internal/services/analysis"
)

// contractMultipliers maps futures roots to their dollar value per point.
// Anything not listed trades at 1x (stocks, ETFs).
var contractMultipliers = map[string]float64{
	"ES":  50,
	"NQ":  20,
	"YM":  5,
	"RTY": 50,
	"CL":  1000,
	"GC":  100,
}

func multiplierFor(symbol string) float64 {
	if m, ok := contractMultipliers[symbol]; ok {
		return m
	}
	return 1
}

type pendingOrder struct {
	order    *models.OrderRequest
	placedAt time.Time
}

type openPosition struct {
	symbol     string
	side       models.OrderSide
	qty        int
	entryPrice float64
	stopLoss   float64
	takeProfit float64
	entryTime  time.Time
	entryBar   int
}

// BacktestBroker replays fills against historical bars. Orders rest until
// the next processed bar and fill at its open; stops and targets are
// checked against each bar's range with the stop taking priority when
// both could have filled.
type BacktestBroker struct {
	cash       float64
	initial    float64
	multiplier float64

	pending  *pendingOrder
	position *openPosition
	trades   []models.BacktestTrade

	dayPnl     float64
	currentDay string
	barIndex   int
	lastPrice  float64
}

var _ repository.Broker = (*BacktestBroker)(nil)

func NewBacktestBroker(symbol string, initialCapital float64) *BacktestBroker {
	return &BacktestBroker{
		cash:       initialCapital,
		initial:    initialCapital,
		multiplier: multiplierFor(symbol),
	}
}

func (b *BacktestBroker) Name() string { return "backtest" }

// ProcessBar advances the simulation by one bar: rolls the daily P&L
// window, fills any resting order at the open, then resolves stops and
// targets against the bar's range.
func (b *BacktestBroker) ProcessBar(bar models.Bar, barIndex int) {
	b.barIndex = barIndex
	b.lastPrice = bar.Close

	day := bar.Timestamp.Format("2006-01-02")
	if day != b.currentDay {
		b.currentDay = day
		b.dayPnl = 0
	}

	if b.pending != nil {
		o := b.pending.order
		b.position = &openPosition{
			symbol:     o.Symbol,
			side:       o.Side,
			qty:        o.Qty,
			entryPrice: bar.Open,
			stopLoss:   o.StopLossPrice,
			takeProfit: o.TakeProfitPrice,
			entryTime:  bar.Timestamp,
			entryBar:   barIndex,
		}
		b.pending = nil
	}

	if b.position == nil {
		return
	}

	p := b.position
	if p.side == models.SideBuy {
		// Worst case first: assume the low printed before the high.
		if bar.Low <= p.stopLoss {
			b.closePosition(p.stopLoss, bar.Timestamp, barIndex)
			return
		}
		if bar.High >= p.takeProfit {
			b.closePosition(p.takeProfit, bar.Timestamp, barIndex)
		}
	} else {
		if bar.High >= p.stopLoss {
			b.closePosition(p.stopLoss, bar.Timestamp, barIndex)
			return
		}
		if bar.Low <= p.takeProfit {
			b.closePosition(p.takeProfit, bar.Timestamp, barIndex)
		}
	}
}

func (b *BacktestBroker) closePosition(exitPrice float64, ts time.Time, barIndex int) {
	p := b.position
	move := exitPrice - p.entryPrice
	if p.side == models.SideSell {
		move = p.entryPrice - exitPrice
	}
	pnl := move * float64(p.qty) * b.multiplier

	riskPerUnit := math.Abs(p.entryPrice - p.stopLoss)
	rMultiple := 0.0
	if riskPerUnit > 0 {
		rMultiple = math.Round(move/riskPerUnit*100) / 100
	}

	b.cash += pnl
	b.dayPnl += pnl

	b.trades = append(b.trades, models.BacktestTrade{
		ID:             len(b.trades) + 1,
		Symbol:         p.symbol,
		Side:           p.side,
		Qty:            p.qty,
		EntryPrice:     p.entryPrice,
		ExitPrice:      exitPrice,
		EntryTimestamp: p.entryTime,
		ExitTimestamp:  ts,
		StopLoss:       p.stopLoss,
		TakeProfit:     p.takeProfit,
		Pnl:            math.Round(pnl*100) / 100,
		RMultiple:      rMultiple,
		Session:        analysis.SessionAt(p.entryTime),
		BarsHeld:       barIndex - p.entryBar,
	})
	b.position = nil
}

// ForceClose flattens any open position at the given price and drops any
// resting order. Called at the end of a run.
func (b *BacktestBroker) ForceClose(price float64, ts time.Time) {
	b.pending = nil
	if b.position != nil {
		b.closePosition(price, ts, b.barIndex)
	}
}

// HasOpenExposure reports whether a position is open or an order rests.
func (b *BacktestBroker) HasOpenExposure() bool {
	return b.position != nil || b.pending != nil
}

func (b *BacktestBroker) Trades() []models.BacktestTrade { return b.trades }

// Equity is cash plus open-position mark-to-market at the last seen close.
func (b *BacktestBroker) Equity() float64 {
	eq := b.cash
	if p := b.position; p != nil {
		move := b.lastPrice - p.entryPrice
		if p.side == models.SideSell {
			move = p.entryPrice - b.lastPrice
		}
		eq += move * float64(p.qty) * b.multiplier
	}
	return eq
}

func (b *BacktestBroker) GetAccount(ctx context.Context) (models.AccountState, error) {
	positions, _ := b.GetPositions(ctx)
	wins := 0
	for _, t := range b.trades {
		if t.Pnl > 0 {
			wins++
		}
	}
	winRate := 0
	if len(b.trades) > 0 {
		winRate = int(math.Round(float64(wins) / float64(len(b.trades)) * 100))
	}
	return models.AccountState{
		Cash:       b.cash,
		Equity:     b.Equity(),
		Positions:  positions,
		DayPnl:     b.dayPnl,
		TotalPnl:   b.cash - b.initial,
		TradeCount: len(b.trades),
		WinRate:    winRate,
	}, nil
}

func (b *BacktestBroker) PlaceOrder(_ context.Context, order *models.OrderRequest) (models.OrderResult, error) {
	if b.HasOpenExposure() {
		return models.OrderResult{
			Status:  models.OrderRejected,
			Message: "position already open",
		}, nil
	}
	b.pending = &pendingOrder{order: order}
	return models.OrderResult{
		OrderID: fmt.Sprintf("bt-%d", len(b.trades)+1),
		Status:  models.OrderPending,
		Message: "resting until next bar open",
	}, nil
}

func (b *BacktestBroker) CancelOrder(context.Context, string) error {
	b.pending = nil
	return nil
}

func (b *BacktestBroker) GetPositions(context.Context) ([]models.Position, error) {
	if b.position == nil {
		return nil, nil
	}
	p := b.position
	move := b.lastPrice - p.entryPrice
	if p.side == models.SideSell {
		move = p.entryPrice - b.lastPrice
	}
	return []models.Position{{
		Symbol:        p.symbol,
		Side:          p.side,
		Qty:           p.qty,
		AvgEntryPrice: p.entryPrice,
		CurrentPrice:  b.lastPrice,
		UnrealizedPnl: move * float64(p.qty) * b.multiplier,
		OpenedAt:      p.entryTime,
	}}, nil
}

// CheckStops is a no-op here; bar processing resolves exits.
func (b *BacktestBroker) CheckStops(context.Context, map[string]float64) error { return nil }
