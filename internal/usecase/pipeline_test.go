package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/services/engine"
)

type recordingBroker struct {
	placed []*models.OrderRequest
}

func (b *recordingBroker) Name() string { return "recording" }

func (b *recordingBroker) GetAccount(context.Context) (models.AccountState, error) {
	return models.AccountState{Cash: 100000, Equity: 100000}, nil
}

func (b *recordingBroker) PlaceOrder(_ context.Context, order *models.OrderRequest) (models.OrderResult, error) {
	b.placed = append(b.placed, order)
	return models.OrderResult{OrderID: "ord-1", Status: models.OrderFilled}, nil
}

func (b *recordingBroker) CancelOrder(context.Context, string) error { return nil }

func (b *recordingBroker) GetPositions(context.Context) ([]models.Position, error) { return nil, nil }

func (b *recordingBroker) CheckStops(context.Context, map[string]float64) error { return nil }

type countingPublisher struct {
	published int
}

func (p *countingPublisher) PublishDecision(context.Context, *models.ScoreResult, *models.RiskDecision) error {
	p.published++
	return nil
}

func (p *countingPublisher) Close() error { return nil }

func TestPipelineQuietMarketPublishesWithoutTrading(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := quietMarket(start)
	bk := &recordingBroker{}
	pub := &countingPublisher{}

	p := NewPipeline(provider, bk, pub, nopMetrics{}, testLogger(t),
		engine.DefaultRiskConfig(), nil, nil)

	res, err := p.RunSymbol(context.Background(), "NQ")
	if err != nil {
		t.Fatal(err)
	}
	if res.TradeExecuted {
		t.Error("trade executed in a flat market")
	}
	if res.Risk.Approved {
		t.Errorf("risk approved: %s", res.Risk.Reason)
	}
	if len(bk.placed) != 0 {
		t.Errorf("%d orders placed, want 0", len(bk.placed))
	}
	if pub.published != 1 {
		t.Errorf("published %d decisions, want 1", pub.published)
	}
}

func TestPipelineSkipsWithoutQuote(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := quietMarket(start)
	provider.quote = models.Quote{}

	p := NewPipeline(provider, &recordingBroker{}, nil, nopMetrics{}, testLogger(t),
		engine.DefaultRiskConfig(), nil, nil)

	res, err := p.RunSymbol(context.Background(), "NQ")
	if err != nil {
		t.Fatal(err)
	}
	if res.Risk.Reason != "No data" {
		t.Errorf("reason = %q, want No data", res.Risk.Reason)
	}
	if res.Score.Bias != models.BiasNeutral {
		t.Errorf("bias = %s, want neutral", res.Score.Bias)
	}
}

func TestPipelineBlockedSessionShortCircuits(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	provider := quietMarket(start)
	bk := &recordingBroker{}
	pub := &countingPublisher{}

	p := NewPipeline(provider, bk, pub, nopMetrics{}, testLogger(t),
		engine.DefaultRiskConfig(), []string{"ny_lunch"}, nil)
	// Pin the evaluation instant into the lunch window.
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatal(err)
	}
	p.now = func() time.Time { return time.Date(2025, 3, 10, 12, 30, 0, 0, loc) }

	res, err := p.RunSymbol(context.Background(), "NQ")
	if err != nil {
		t.Fatal(err)
	}
	if res.Risk.Approved {
		t.Error("risk approved in a blocked session")
	}
	if !strings.Contains(res.Risk.Reason, "blocked") {
		t.Errorf("reason = %q, want a blocked-session note", res.Risk.Reason)
	}
	if pub.published != 1 {
		t.Errorf("published %d decisions, want 1 even when blocked", pub.published)
	}
}
