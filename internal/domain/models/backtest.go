package models

import "time"

// BacktestConfig describes one historical run.
type BacktestConfig struct {
	Symbol         string    `json:"symbol"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	InitialCapital float64   `json:"initialCapital"`
	ScoreThreshold int       `json:"scoreThreshold"`
	MaxDailyLoss   float64   `json:"maxDailyLoss"` // percent of equity
	Timeframe      Timeframe `json:"timeframe"`
}

type BacktestStatus string

const (
	BacktestPending   BacktestStatus = "pending"
	BacktestRunning   BacktestStatus = "running"
	BacktestCompleted BacktestStatus = "completed"
	BacktestFailed    BacktestStatus = "failed"
)

// EquityPoint is one sample of the simulated account value.
// Drawdown is runningPeak - equity and is never negative.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
	Drawdown  float64   `json:"drawdown"`
}

// BacktestTrade is a completed round trip recorded by the backtest broker.
type BacktestTrade struct {
	ID             int         `json:"id"`
	Symbol         string      `json:"symbol"`
	Side           OrderSide   `json:"side"`
	Qty            int         `json:"qty"`
	EntryPrice     float64     `json:"entryPrice"`
	ExitPrice      float64     `json:"exitPrice"`
	EntryTimestamp time.Time   `json:"entryTimestamp"`
	ExitTimestamp  time.Time   `json:"exitTimestamp"`
	StopLoss       float64     `json:"stopLoss"`
	TakeProfit     float64     `json:"takeProfit"`
	Pnl            float64     `json:"pnl"`
	RMultiple      float64     `json:"rMultiple"`
	Session        SessionName `json:"session"`
	BarsHeld       int         `json:"barsHeld"`
}

type BacktestMetrics struct {
	TotalTrades    int     `json:"totalTrades"`
	Winners        int     `json:"winners"`
	Losers         int     `json:"losers"`
	WinRate        int     `json:"winRate"`
	ProfitFactor   float64 `json:"profitFactor"`
	SharpeRatio    float64 `json:"sharpeRatio"`
	MaxDrawdown    float64 `json:"maxDrawdown"`
	MaxDrawdownPct float64 `json:"maxDrawdownPct"`
	TotalPnl       float64 `json:"totalPnl"`
	TotalPnlPct    float64 `json:"totalPnlPct"`
	AvgWin         float64 `json:"avgWin"`
	AvgLoss        float64 `json:"avgLoss"`
	LargestWin     float64 `json:"largestWin"`
	LargestLoss    float64 `json:"largestLoss"`
	AvgHoldBars    int     `json:"avgHoldBars"`
}

// SessionBreakdown aggregates trade outcomes by entry session.
type SessionBreakdown struct {
	Session SessionName `json:"session"`
	Trades  int         `json:"trades"`
	Wins    int         `json:"wins"`
	Pnl     float64     `json:"pnl"`
	WinRate int         `json:"winRate"`
}

// BacktestResult is the at-rest shape of one run. On failure the metrics
// are zeroed and the curve and trade list are empty; no partial result is
// ever surfaced.
type BacktestResult struct {
	ID               string             `json:"id"`
	Config           BacktestConfig     `json:"config"`
	Status           BacktestStatus     `json:"status"`
	Metrics          BacktestMetrics    `json:"metrics"`
	EquityCurve      []EquityPoint      `json:"equityCurve"`
	Trades           []BacktestTrade    `json:"trades"`
	SessionBreakdown []SessionBreakdown `json:"sessionBreakdown"`
	Progress         float64            `json:"progress"`
	Error            string             `json:"error,omitempty"`
}
