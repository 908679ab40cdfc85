package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"EdgeRunner/internal/domain/models"
	domrepo "EdgeRunner/internal/domain/repository"
	pkgch "EdgeRunner/pkg/clickhouse"
	applogger "EdgeRunner/pkg/logger"
)

// CHResultStore implements ResultStore backed by ClickHouse. Metrics land
// in flat columns; the equity curve and session breakdown are stored as
// JSON blobs since they are only ever read back whole.
type CHResultStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

var _ domrepo.ResultStore = (*CHResultStore)(nil)

func NewCHResultStore(ch *pkgch.Client) *CHResultStore {
	return &CHResultStore{ch: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHResultStore) SetLogger(l *applogger.Logger) { s.l = l }

var resultSchema = []string{
	`CREATE DATABASE IF NOT EXISTS edgerunner`,
	`CREATE TABLE IF NOT EXISTS edgerunner.backtest_results (
        id String,
        symbol String,
        status String,
        timeframe String,
        start_date DateTime,
        end_date DateTime,
        initial_capital Float64,
        score_threshold Int32,
        total_trades Int32,
        winners Int32,
        losers Int32,
        win_rate Int32,
        profit_factor Float64,
        sharpe_ratio Float64,
        max_drawdown Float64,
        max_drawdown_pct Float64,
        total_pnl Float64,
        total_pnl_pct Float64,
        equity_curve String,
        session_breakdown String,
        error String,
        created_at DateTime DEFAULT now()
    ) ENGINE = ReplacingMergeTree(created_at)
    ORDER BY id`,
	`CREATE TABLE IF NOT EXISTS edgerunner.backtest_trades (
        run_id String,
        trade_id Int32,
        symbol String,
        side String,
        qty Int32,
        entry_price Float64,
        exit_price Float64,
        entry_ts DateTime,
        exit_ts DateTime,
        stop_loss Float64,
        take_profit Float64,
        pnl Float64,
        r_multiple Float64,
        session String,
        bars_held Int32
    ) ENGINE = MergeTree
    ORDER BY (run_id, trade_id)`,
}

func (s *CHResultStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, resultSchema)
}

func (s *CHResultStore) SaveResult(ctx context.Context, res *models.BacktestResult) error {
	start := time.Now()

	curve, err := json.Marshal(res.EquityCurve)
	if err != nil {
		return fmt.Errorf("marshal equity curve: %w", err)
	}
	breakdown, err := json.Marshal(res.SessionBreakdown)
	if err != nil {
		return fmt.Errorf("marshal session breakdown: %w", err)
	}

	// A run with no losing trades has an infinite profit factor, which
	// neither JSON nor every ClickHouse client round-trips. Clamp it.
	pf := res.Metrics.ProfitFactor
	if math.IsInf(pf, 1) {
		pf = 9999
	}

	const q = `
        INSERT INTO edgerunner.backtest_results
        (id, symbol, status, timeframe, start_date, end_date, initial_capital, score_threshold,
         total_trades, winners, losers, win_rate, profit_factor, sharpe_ratio,
         max_drawdown, max_drawdown_pct, total_pnl, total_pnl_pct,
         equity_curve, session_breakdown, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = s.db.ExecContext(ctx, q,
		res.ID,
		res.Config.Symbol,
		string(res.Status),
		string(res.Config.Timeframe),
		res.Config.StartDate,
		res.Config.EndDate,
		res.Config.InitialCapital,
		res.Config.ScoreThreshold,
		res.Metrics.TotalTrades,
		res.Metrics.Winners,
		res.Metrics.Losers,
		res.Metrics.WinRate,
		pf,
		res.Metrics.SharpeRatio,
		res.Metrics.MaxDrawdown,
		res.Metrics.MaxDrawdownPct,
		res.Metrics.TotalPnl,
		res.Metrics.TotalPnlPct,
		string(curve),
		string(breakdown),
		res.Error,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_result error",
				applogger.String("run_id", res.ID),
				applogger.String("symbol", res.Config.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save result: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse save_result ok",
			applogger.String("run_id", res.ID),
			applogger.String("symbol", res.Config.Symbol),
			applogger.String("status", string(res.Status)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHResultStore) SaveTrades(ctx context.Context, runID string, trades []models.BacktestTrade) error {
	if len(trades) == 0 {
		return nil
	}
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin trades batch: %w", err)
	}
	const q = `
        INSERT INTO edgerunner.backtest_trades
        (run_id, trade_id, symbol, side, qty, entry_price, exit_price,
         entry_ts, exit_ts, stop_loss, take_profit, pnl, r_multiple, session, bars_held)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare trades batch: %w", err)
	}
	defer stmt.Close()

	for _, t := range trades {
		if _, err := stmt.ExecContext(ctx,
			runID,
			t.ID,
			t.Symbol,
			string(t.Side),
			t.Qty,
			t.EntryPrice,
			t.ExitPrice,
			t.EntryTimestamp,
			t.ExitTimestamp,
			t.StopLoss,
			t.TakeProfit,
			t.Pnl,
			t.RMultiple,
			string(t.Session),
			t.BarsHeld,
		); err != nil {
			_ = tx.Rollback()
			if s.l != nil {
				s.l.Error("clickhouse save_trades append error",
					applogger.String("run_id", runID),
					applogger.Int("trade_id", t.ID),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("append trade: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit trades batch: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse save_trades ok",
			applogger.String("run_id", runID),
			applogger.Int("rows", len(trades)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHResultStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHResultStore) Close() error {
	return s.ch.Close()
}
