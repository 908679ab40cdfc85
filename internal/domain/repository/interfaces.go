package repository

import (
	"context"
	"time"

	"EdgeRunner/internal/domain/models"
)

// DataProvider supplies bar history and quotes. Implementations own
// pagination, retries and rate limiting; the core never retries.
type DataProvider interface {
	GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error)
	GetBarsRange(ctx context.Context, symbol string, tf models.Timeframe, from, to time.Time) ([]models.Bar, error)
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)
}

// Broker executes orders against an account. The live simulation and the
// backtest broker both satisfy it.
type Broker interface {
	Name() string
	GetAccount(ctx context.Context) (models.AccountState, error)
	PlaceOrder(ctx context.Context, order *models.OrderRequest) (models.OrderResult, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetPositions(ctx context.Context) ([]models.Position, error)
	CheckStops(ctx context.Context, prices map[string]float64) error
}

// ResultStore persists finished backtest runs.
type ResultStore interface {
	Init(ctx context.Context) error
	SaveResult(ctx context.Context, res *models.BacktestResult) error
	SaveTrades(ctx context.Context, runID string, trades []models.BacktestTrade) error
	Health(ctx context.Context) error
	Close() error
}

// DecisionPublisher emits scored trade decisions as events.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, score *models.ScoreResult, risk *models.RiskDecision) error
	Close() error
}

// QuoteStream pushes live quotes for subscribed symbols.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.Quote, <-chan error)
	Close() error
	IsConnected() bool
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordDecision(symbol string, bias string, confidence int)
	RecordOrderPlaced(symbol string)
	RecordOrderRejected(symbol, reason string)
	RecordBacktest(status string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
