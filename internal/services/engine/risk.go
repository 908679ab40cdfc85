package engine

import (
	"encoding/json"
	"fmt"
	"math"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/services/analysis"
)

// RiskConfig carries the account-level guard rails. Percent fields are
// whole percents (2 means 2%).
type RiskConfig struct {
	ScoreThreshold         int
	MaxDailyLossPercent    float64
	MaxPositionSizePercent float64
	MinRewardRiskRatio     float64
	RewardRiskEpsilon      float64
	RiskPerTradePercent    float64
	StopATRMultiple        float64
}

func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		ScoreThreshold:         65,
		MaxDailyLossPercent:    2,
		MaxPositionSizePercent: 5,
		MinRewardRiskRatio:     2,
		RewardRiskEpsilon:      0.005,
		RiskPerTradePercent:    1,
		StopATRMultiple:        1.5,
	}
}

// RiskEvaluator turns an eligible score into a sized bracket order, or
// rejects it. Gates run in a fixed order so every rejection reason is
// deterministic for a given input.
type RiskEvaluator struct {
	cfg RiskConfig
}

func NewRiskEvaluator(cfg RiskConfig) *RiskEvaluator {
	if cfg.RewardRiskEpsilon == 0 {
		cfg.RewardRiskEpsilon = 0.005
	}
	if cfg.StopATRMultiple == 0 {
		cfg.StopATRMultiple = 1.5
	}
	if cfg.RiskPerTradePercent == 0 {
		cfg.RiskPerTradePercent = 1
	}
	return &RiskEvaluator{cfg: cfg}
}

func (r *RiskEvaluator) Evaluate(score *models.ScoreResult, account *models.AccountState, snap *models.BarSnapshot) models.RiskDecision {
	if score.Confidence < r.cfg.ScoreThreshold {
		return reject(fmt.Sprintf("Confidence %d%% below threshold %d%%", score.Confidence, r.cfg.ScoreThreshold))
	}
	if score.Bias == models.BiasNeutral {
		return reject("No directional bias")
	}

	maxDailyLoss := account.Equity * r.cfg.MaxDailyLossPercent / 100
	if account.DayPnl < -maxDailyLoss {
		return reject(fmt.Sprintf("Daily loss limit reached: %.2f (max %.2f)", account.DayPnl, maxDailyLoss))
	}

	bars := snap.Series(models.TF15m)
	if len(bars) < 15 {
		return reject("Insufficient bars for ATR-based stop placement")
	}
	atr := analysis.ATR(bars, 14)
	if atr == 0 {
		return reject("ATR is zero, cannot size stop distance")
	}

	entry := bars[len(bars)-1].Close
	stopDistance := atr * r.cfg.StopATRMultiple

	var side models.OrderSide
	var stopLoss, takeProfit float64
	if score.Bias == models.BiasLong {
		side = models.SideBuy
		stopLoss = entry - stopDistance
		takeProfit = entry + stopDistance*r.cfg.MinRewardRiskRatio
	} else {
		side = models.SideSell
		stopLoss = entry + stopDistance
		takeProfit = entry - stopDistance*r.cfg.MinRewardRiskRatio
	}

	riskPerShare := math.Abs(entry - stopLoss)
	rewardPerShare := math.Abs(takeProfit - entry)
	rr := rewardPerShare / riskPerShare
	// Float rounding can land the ratio a hair under the target.
	if rr < r.cfg.MinRewardRiskRatio-r.cfg.RewardRiskEpsilon {
		return reject(fmt.Sprintf("Reward/risk %.2f below minimum %.2f", rr, r.cfg.MinRewardRiskRatio))
	}

	riskBudget := account.Equity * r.cfg.RiskPerTradePercent / 100
	maxNotional := account.Equity * r.cfg.MaxPositionSizePercent / 100
	qty := int(math.Floor(math.Min(riskBudget/riskPerShare, maxNotional/entry)))
	if qty <= 0 {
		return reject("Position size rounds to zero shares")
	}

	snapshot, _ := json.Marshal(score.Items)
	order := &models.OrderRequest{
		Symbol:            score.Symbol,
		Side:              side,
		Qty:               qty,
		Type:              models.OrderMarket,
		StopLossPrice:     round2(stopLoss),
		TakeProfitPrice:   round2(takeProfit),
		Confidence:        score.Confidence,
		ChecklistSnapshot: string(snapshot),
	}

	return models.RiskDecision{
		Approved:     true,
		Reason:       fmt.Sprintf("Approved: %d shares, %.2f R/R", qty, rr),
		Order:        order,
		StopLoss:     round2(stopLoss),
		TakeProfit:   round2(takeProfit),
		PositionSize: qty,
	}
}

func reject(reason string) models.RiskDecision {
	return models.RiskDecision{Approved: false, Reason: reason}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
