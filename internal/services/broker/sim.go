package broker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/domain/repository"
)

// SimBroker is the live paper-trading account. Market orders fill
// immediately at the latest quote; bracket exits are resolved by
// CheckStops as quotes arrive. One position per symbol.
type SimBroker struct {
	mu sync.Mutex

	cash      float64
	initial   float64
	provider  repository.DataProvider
	positions map[string]*openPosition

	closedPnl  []float64
	dayPnl     float64
	currentDay string
	now        func() time.Time
}

var _ repository.Broker = (*SimBroker)(nil)

func NewSimBroker(initialCapital float64, provider repository.DataProvider) *SimBroker {
	return &SimBroker{
		cash:      initialCapital,
		initial:   initialCapital,
		provider:  provider,
		positions: make(map[string]*openPosition),
		now:       time.Now,
	}
}

func (s *SimBroker) Name() string { return "simulated" }

func (s *SimBroker) rollDay(t time.Time) {
	day := t.Format("2006-01-02")
	if day != s.currentDay {
		s.currentDay = day
		s.dayPnl = 0
	}
}

func (s *SimBroker) PlaceOrder(ctx context.Context, order *models.OrderRequest) (models.OrderResult, error) {
	quote, err := s.provider.GetQuote(ctx, order.Symbol)
	if err != nil {
		return models.OrderResult{}, fmt.Errorf("fetch fill price for %s: %w", order.Symbol, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay(s.now())

	if _, open := s.positions[order.Symbol]; open {
		return models.OrderResult{
			Status:  models.OrderRejected,
			Message: fmt.Sprintf("position already open in %s", order.Symbol),
		}, nil
	}

	fillPrice := quote.Price
	if order.Type == models.OrderLimit && order.LimitPrice > 0 {
		fillPrice = order.LimitPrice
	}

	s.positions[order.Symbol] = &openPosition{
		symbol:     order.Symbol,
		side:       order.Side,
		qty:        order.Qty,
		entryPrice: fillPrice,
		stopLoss:   order.StopLossPrice,
		takeProfit: order.TakeProfitPrice,
		entryTime:  s.now(),
	}

	return models.OrderResult{
		OrderID:     uuid.NewString(),
		Status:      models.OrderFilled,
		FilledPrice: fillPrice,
		FilledAt:    s.now(),
	}, nil
}

func (s *SimBroker) CancelOrder(context.Context, string) error {
	// Market orders fill synchronously, so there is never a resting order.
	return nil
}

// CheckStops closes any position whose stop or target the given prices
// have reached. The stop wins when a price satisfies both.
func (s *SimBroker) CheckStops(_ context.Context, prices map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollDay(s.now())

	for symbol, p := range s.positions {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		if p.side == models.SideBuy {
			if price <= p.stopLoss {
				s.close(symbol, p.stopLoss)
			} else if price >= p.takeProfit {
				s.close(symbol, p.takeProfit)
			}
		} else {
			if price >= p.stopLoss {
				s.close(symbol, p.stopLoss)
			} else if price <= p.takeProfit {
				s.close(symbol, p.takeProfit)
			}
		}
	}
	return nil
}

func (s *SimBroker) close(symbol string, exitPrice float64) {
	p := s.positions[symbol]
	move := exitPrice - p.entryPrice
	if p.side == models.SideSell {
		move = p.entryPrice - exitPrice
	}
	pnl := move * float64(p.qty) * multiplierFor(symbol)
	s.cash += pnl
	s.dayPnl += pnl
	s.closedPnl = append(s.closedPnl, pnl)
	delete(s.positions, symbol)
}

func (s *SimBroker) GetAccount(ctx context.Context) (models.AccountState, error) {
	positions, err := s.GetPositions(ctx)
	if err != nil {
		return models.AccountState{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	equity := s.cash
	for _, p := range positions {
		equity += p.UnrealizedPnl
	}
	wins := 0
	for _, pnl := range s.closedPnl {
		if pnl > 0 {
			wins++
		}
	}
	winRate := 0
	if len(s.closedPnl) > 0 {
		winRate = int(math.Round(float64(wins) / float64(len(s.closedPnl)) * 100))
	}
	return models.AccountState{
		Cash:       s.cash,
		Equity:     equity,
		Positions:  positions,
		DayPnl:     s.dayPnl,
		TotalPnl:   s.cash - s.initial,
		TradeCount: len(s.closedPnl),
		WinRate:    winRate,
	}, nil
}

func (s *SimBroker) GetPositions(ctx context.Context) ([]models.Position, error) {
	s.mu.Lock()
	open := make([]*openPosition, 0, len(s.positions))
	for _, p := range s.positions {
		open = append(open, p)
	}
	s.mu.Unlock()

	out := make([]models.Position, 0, len(open))
	for _, p := range open {
		quote, err := s.provider.GetQuote(ctx, p.symbol)
		if err != nil {
			return nil, fmt.Errorf("mark %s to market: %w", p.symbol, err)
		}
		move := quote.Price - p.entryPrice
		if p.side == models.SideSell {
			move = p.entryPrice - quote.Price
		}
		out = append(out, models.Position{
			Symbol:        p.symbol,
			Side:          p.side,
			Qty:           p.qty,
			AvgEntryPrice: p.entryPrice,
			CurrentPrice:  quote.Price,
			UnrealizedPnl: move * float64(p.qty) * multiplierFor(p.symbol),
			OpenedAt:      p.entryTime,
		})
	}
	return out, nil
}
