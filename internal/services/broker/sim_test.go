package broker

import (
	"context"
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
)

type stubProvider struct {
	price float64
}

func (s *stubProvider) GetBars(context.Context, string, models.Timeframe, int) ([]models.Bar, error) {
	return nil, nil
}

func (s *stubProvider) GetBarsRange(context.Context, string, models.Timeframe, time.Time, time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (s *stubProvider) GetQuote(_ context.Context, symbol string) (models.Quote, error) {
	return models.Quote{Symbol: symbol, Price: s.price, Timestamp: time.Now()}, nil
}

func TestSimBrokerFillsAtQuote(t *testing.T) {
	provider := &stubProvider{price: 100}
	s := NewSimBroker(100000, provider)
	ctx := context.Background()

	res, err := s.PlaceOrder(ctx, buyOrder(2, 95, 110))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != models.OrderFilled {
		t.Fatalf("status = %s, want filled", res.Status)
	}
	if res.FilledPrice != 100 {
		t.Errorf("fill = %.2f, want the quote 100.00", res.FilledPrice)
	}

	res, _ = s.PlaceOrder(ctx, buyOrder(1, 95, 110))
	if res.Status != models.OrderRejected {
		t.Errorf("duplicate order status = %s, want rejected", res.Status)
	}
}

func TestSimBrokerCheckStopsClosesAtStop(t *testing.T) {
	provider := &stubProvider{price: 100}
	s := NewSimBroker(100000, provider)
	ctx := context.Background()

	s.PlaceOrder(ctx, buyOrder(2, 95, 110))
	if err := s.CheckStops(ctx, map[string]float64{"NQ": 94.5}); err != nil {
		t.Fatal(err)
	}

	account, err := s.GetAccount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(account.Positions) != 0 {
		t.Fatal("position survived a stop hit")
	}
	// 5 points x 2 contracts x $20/pt against us.
	if account.TotalPnl != -200 {
		t.Errorf("total pnl = %.2f, want -200.00", account.TotalPnl)
	}
	if account.DayPnl != -200 {
		t.Errorf("day pnl = %.2f, want -200.00", account.DayPnl)
	}
}

func TestSimBrokerCheckStopsClosesAtTarget(t *testing.T) {
	provider := &stubProvider{price: 100}
	s := NewSimBroker(100000, provider)
	ctx := context.Background()

	s.PlaceOrder(ctx, buyOrder(1, 95, 110))
	s.CheckStops(ctx, map[string]float64{"NQ": 111})

	account, _ := s.GetAccount(ctx)
	if account.TradeCount != 1 {
		t.Fatal("target hit not recorded as a closed trade")
	}
	if account.TotalPnl != 200 {
		t.Errorf("total pnl = %.2f, want 200.00", account.TotalPnl)
	}
	if account.WinRate != 100 {
		t.Errorf("win rate = %d, want 100", account.WinRate)
	}
}

func TestSimBrokerIgnoresUnquotedSymbols(t *testing.T) {
	provider := &stubProvider{price: 100}
	s := NewSimBroker(100000, provider)
	ctx := context.Background()

	s.PlaceOrder(ctx, buyOrder(1, 95, 110))
	s.CheckStops(ctx, map[string]float64{"ES": 90})

	account, _ := s.GetAccount(ctx)
	if len(account.Positions) != 1 {
		t.Fatal("position closed by an unrelated symbol's price")
	}
}
