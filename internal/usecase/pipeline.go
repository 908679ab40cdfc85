package usecase

import (
	"context"
	"fmt"
	"time"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/domain/repository"
	"EdgeRunner/internal/services/analysis"
	"EdgeRunner/internal/services/engine"
	"EdgeRunner/pkg/logger"
)

// PipelineResult is everything one live evaluation produced.
type PipelineResult struct {
	Symbol        string              `json:"symbol"`
	Signals       models.SignalBundle `json:"signals"`
	Score         models.ScoreResult  `json:"score"`
	Risk          models.RiskDecision `json:"risk"`
	TradeExecuted bool                `json:"tradeExecuted"`
}

// Pipeline runs the live decision path for one symbol: fetch, analyze,
// score, filter, size, execute, publish.
type Pipeline struct {
	provider  repository.DataProvider
	broker    repository.Broker
	publisher repository.DecisionPublisher
	metrics   repository.Metrics
	log       *logger.Logger

	scorer    *engine.Scorer
	evaluator *engine.RiskEvaluator
	blocked   map[models.SessionName]bool
	peers     map[string]string
	now       func() time.Time
}

func NewPipeline(
	provider repository.DataProvider,
	broker repository.Broker,
	publisher repository.DecisionPublisher,
	metrics repository.Metrics,
	log *logger.Logger,
	riskCfg engine.RiskConfig,
	blockedSessions []string,
	peers map[string]string,
) *Pipeline {
	blocked := make(map[models.SessionName]bool, len(blockedSessions))
	for _, s := range blockedSessions {
		blocked[models.SessionName(s)] = true
	}
	return &Pipeline{
		provider:  provider,
		broker:    broker,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		scorer:    engine.NewScorer(),
		evaluator: engine.NewRiskEvaluator(riskCfg),
		blocked:   blocked,
		peers:     peers,
		now:       time.Now,
	}
}

// RunSymbol evaluates one symbol once. A missing quote is not an error:
// it yields a no-data result so the caller's loop keeps going.
func (p *Pipeline) RunSymbol(ctx context.Context, symbol string) (*PipelineResult, error) {
	started := p.now()

	snap, err := p.fetchSnapshot(ctx, symbol)
	if err != nil {
		p.metrics.RecordError("fetch_bars")
		return nil, fmt.Errorf("fetch bars for %s: %w", symbol, err)
	}

	quote, err := p.provider.GetQuote(ctx, symbol)
	if err != nil || quote.Price == 0 {
		p.log.Warn("no current price, skipping evaluation", logger.String("symbol", symbol))
		return p.emptyResult(symbol), nil
	}

	peer := p.fetchPeer(ctx, symbol)
	bundle := analysis.Run(snap, quote.Price, peer, p.now())
	score := p.scorer.Score(&bundle)

	p.log.Info("scored",
		logger.String("symbol", symbol),
		logger.Int("confidence", score.Confidence),
		logger.String("bias", string(score.Bias)),
		logger.Bool("shouldTrade", score.ShouldTrade))
	p.metrics.RecordDecision(symbol, string(score.Bias), score.Confidence)

	result := &PipelineResult{Symbol: symbol, Signals: bundle, Score: score}

	if p.blocked[bundle.SessionTime.CurrentSession] {
		result.Risk = models.RiskDecision{
			Approved: false,
			Reason:   fmt.Sprintf("Session %s is blocked", bundle.SessionTime.CurrentSession),
		}
		p.publish(ctx, result)
		return result, nil
	}

	account, err := p.broker.GetAccount(ctx)
	if err != nil {
		p.metrics.RecordError("broker_account")
		return nil, fmt.Errorf("fetch account state: %w", err)
	}
	result.Risk = p.evaluator.Evaluate(&score, &account, snap)

	if result.Risk.Approved && result.Risk.Order != nil {
		orderRes, err := p.broker.PlaceOrder(ctx, result.Risk.Order)
		if err != nil {
			p.metrics.RecordError("place_order")
			return nil, fmt.Errorf("place order for %s: %w", symbol, err)
		}
		result.TradeExecuted = orderRes.Status == models.OrderFilled
		if result.TradeExecuted {
			p.metrics.RecordOrderPlaced(symbol)
			p.log.Info("trade executed",
				logger.String("symbol", symbol),
				logger.String("orderId", orderRes.OrderID),
				logger.Any("fillPrice", orderRes.FilledPrice))
		} else {
			p.metrics.RecordOrderRejected(symbol, orderRes.Message)
		}
	} else if !result.Risk.Approved {
		p.metrics.RecordOrderRejected(symbol, result.Risk.Reason)
	}

	p.publish(ctx, result)
	p.metrics.RecordLatency("pipeline", time.Since(started).Seconds())
	return result, nil
}

func (p *Pipeline) fetchSnapshot(ctx context.Context, symbol string) (*models.BarSnapshot, error) {
	bars := make(map[models.Timeframe][]models.Bar, len(models.AllTimeframes))
	for _, tf := range models.AllTimeframes {
		series, err := p.provider.GetBars(ctx, symbol, tf, snapshotLookback)
		if err != nil {
			return nil, fmt.Errorf("timeframe %s: %w", tf, err)
		}
		bars[tf] = series
	}
	return &models.BarSnapshot{Symbol: symbol, Bars: bars, AsOf: p.now()}, nil
}

// fetchPeer loads the correlated symbol's 15m series for divergence
// comparison. Failures degrade to no peer rather than aborting the run.
func (p *Pipeline) fetchPeer(ctx context.Context, symbol string) *models.BarSnapshot {
	peerSymbol, ok := p.peers[symbol]
	if !ok || peerSymbol == "" {
		return nil
	}
	series, err := p.provider.GetBars(ctx, peerSymbol, models.TF15m, snapshotLookback)
	if err != nil {
		p.log.Warn("peer data unavailable",
			logger.String("symbol", symbol),
			logger.String("peer", peerSymbol),
			logger.Error(err))
		return nil
	}
	return &models.BarSnapshot{
		Symbol: peerSymbol,
		Bars:   map[models.Timeframe][]models.Bar{models.TF15m: series},
		AsOf:   p.now(),
	}
}

func (p *Pipeline) publish(ctx context.Context, result *PipelineResult) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishDecision(ctx, &result.Score, &result.Risk); err != nil {
		p.metrics.RecordError("publish_decision")
		p.log.Error("publish decision", logger.String("symbol", result.Symbol), logger.Error(err))
	}
}

func (p *Pipeline) emptyResult(symbol string) *PipelineResult {
	return &PipelineResult{
		Symbol: symbol,
		Score: models.ScoreResult{
			Symbol:    symbol,
			Timestamp: p.now(),
			MaxScore:  100,
			Bias:      models.BiasNeutral,
			Reason:    "No data",
		},
		Risk: models.RiskDecision{Approved: false, Reason: "No data"},
	}
}
