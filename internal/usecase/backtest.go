package usecase

import (
	"context"
	"errors"
	"time"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/domain/repository"
	"EdgeRunner/internal/services/analysis"
	"EdgeRunner/internal/services/broker"
	"EdgeRunner/internal/services/engine"
	"EdgeRunner/pkg/logger"
)

const (
	// Bars to skip before trading so every analyzer has context.
	minContextBars = 60
	// Bars per timeframe visible in one snapshot.
	snapshotLookback = 100
	// Warmup fetched before the requested start.
	intradayWarmupDays = 5
	dailyLookbackDays  = 180

	progressInterval = 50
)

// BacktestEngine replays one symbol bar by bar: fills first, then
// analysis on a lookahead-free snapshot, then scoring and risk.
type BacktestEngine struct {
	provider repository.DataProvider
	log      *logger.Logger
	metrics  repository.Metrics

	// Sessions in which no new entries are taken.
	blockedSessions map[models.SessionName]bool
}

func NewBacktestEngine(provider repository.DataProvider, log *logger.Logger, metrics repository.Metrics) *BacktestEngine {
	return &BacktestEngine{
		provider: provider,
		log:      log,
		metrics:  metrics,
		blockedSessions: map[models.SessionName]bool{
			models.SessionNYAM:    true,
			models.SessionNYLunch: true,
		},
	}
}

// Run executes a full backtest. It never returns an error: failures
// produce a failed result with zeroed metrics so callers always have
// something to persist and serve.
func (e *BacktestEngine) Run(ctx context.Context, id string, cfg models.BacktestConfig, onProgress func(float64)) *models.BacktestResult {
	res, err := e.run(ctx, id, cfg, onProgress)
	if err != nil {
		e.log.Error("backtest failed",
			logger.String("id", id),
			logger.String("symbol", cfg.Symbol),
			logger.Error(err))
		e.metrics.RecordBacktest(string(models.BacktestFailed))
		return &models.BacktestResult{
			ID:               id,
			Config:           cfg,
			Status:           models.BacktestFailed,
			EquityCurve:      []models.EquityPoint{},
			Trades:           []models.BacktestTrade{},
			SessionBreakdown: []models.SessionBreakdown{},
			Error:            err.Error(),
		}
	}
	e.metrics.RecordBacktest(string(models.BacktestCompleted))
	return res
}

func (e *BacktestEngine) run(ctx context.Context, id string, cfg models.BacktestConfig, onProgress func(float64)) (*models.BacktestResult, error) {
	if onProgress == nil {
		onProgress = func(float64) {}
	}
	onProgress(0)

	started := time.Now()
	cache, baseBars, err := e.loadHistory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(baseBars) == 0 {
		return nil, errors.New("no historical bars loaded for the given date range")
	}

	testStart := firstIndexAtOrAfter(baseBars, cfg.StartDate)
	if testStart < minContextBars {
		testStart = minContextBars
	}

	bt := broker.NewBacktestBroker(cfg.Symbol, cfg.InitialCapital)
	scorer := engine.NewScorer()
	riskCfg := engine.DefaultRiskConfig()
	riskCfg.ScoreThreshold = cfg.ScoreThreshold
	riskCfg.MaxDailyLossPercent = cfg.MaxDailyLoss
	riskCfg.MaxPositionSizePercent = 10
	evaluator := engine.NewRiskEvaluator(riskCfg)

	var curve []models.EquityPoint
	peak := cfg.InitialCapital
	total := len(baseBars)

	for i := testStart; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bar := baseBars[i]

		// Resolve resting orders and exits before any new decision.
		bt.ProcessBar(bar, i)

		snap := cache.Snapshot(bar.Timestamp, snapshotLookback)
		bundle := analysis.Run(snap, bar.Close, nil, bar.Timestamp)
		score := scorer.Score(&bundle)

		if !bt.HasOpenExposure() && !e.blockedSessions[bundle.SessionTime.CurrentSession] {
			account, _ := bt.GetAccount(ctx)
			risk := evaluator.Evaluate(&score, &account, snap)
			if risk.Approved && risk.Order != nil {
				if _, err := bt.PlaceOrder(ctx, risk.Order); err != nil {
					return nil, err
				}
			}
		}

		equity := bt.Equity()
		if equity > peak {
			peak = equity
		}
		curve = append(curve, models.EquityPoint{
			Timestamp: bar.Timestamp,
			Equity:    equity,
			Drawdown:  peak - equity,
		})

		if i%progressInterval == 0 {
			onProgress(float64(i-testStart) / float64(total-testStart))
		}
	}

	last := baseBars[total-1]
	bt.ForceClose(last.Close, last.Timestamp)
	if len(curve) > 0 {
		curve[len(curve)-1].Equity = bt.Equity()
	}

	trades := bt.Trades()
	if trades == nil {
		trades = []models.BacktestTrade{}
	}
	breakdown := sessionBreakdown(trades)
	if breakdown == nil {
		breakdown = []models.SessionBreakdown{}
	}
	onProgress(1)

	e.log.Info("backtest completed",
		logger.String("id", id),
		logger.String("symbol", cfg.Symbol),
		logger.Int("trades", len(trades)),
		logger.Duration("took", time.Since(started)))

	return &models.BacktestResult{
		ID:               id,
		Config:           cfg,
		Status:           models.BacktestCompleted,
		Metrics:          computeMetrics(trades, curve, cfg.InitialCapital),
		EquityCurve:      curve,
		Trades:           trades,
		SessionBreakdown: breakdown,
		Progress:         1,
	}, nil
}

// loadHistory fetches the base series plus daily context and fills the
// cache with every aggregated timeframe.
func (e *BacktestEngine) loadHistory(ctx context.Context, cfg models.BacktestConfig) (*HistoryCache, []models.Bar, error) {
	warmupStart := cfg.StartDate.AddDate(0, 0, -intradayWarmupDays)
	base, err := e.provider.GetBarsRange(ctx, cfg.Symbol, models.TF5m, warmupStart, cfg.EndDate)
	if err != nil {
		return nil, nil, err
	}

	dailyStart := cfg.StartDate.AddDate(0, 0, -dailyLookbackDays)
	daily, err := e.provider.GetBarsRange(ctx, cfg.Symbol, models.TF1d, dailyStart, cfg.EndDate)
	if err != nil {
		return nil, nil, err
	}

	cache := NewHistoryCache(cfg.Symbol)
	cache.Put(models.TF5m, base)
	cache.Put(models.TF15m, AggregateBars(base, models.TF15m))
	hourly := AggregateBars(base, models.TF1h)
	cache.Put(models.TF1h, hourly)
	cache.Put(models.TF4h, AggregateBars(hourly, models.TF4h))
	cache.Put(models.TF1d, daily)
	return cache, base, nil
}

func firstIndexAtOrAfter(bars []models.Bar, at time.Time) int {
	for i, b := range bars {
		if !b.Timestamp.Before(at) {
			return i
		}
	}
	return minContextBars
}
