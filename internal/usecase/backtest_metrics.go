package usecase

import (
	"math"
	"sort"

	"EdgeRunner/internal/domain/models"
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// computeMetrics summarizes a finished run from its trade list and
// equity curve.
func computeMetrics(trades []models.BacktestTrade, curve []models.EquityPoint, initialCapital float64) models.BacktestMetrics {
	m := models.BacktestMetrics{TotalTrades: len(trades)}

	var grossWins, grossLosses, totalPnl float64
	var largestWin, largestLoss float64
	var holdBars int
	for _, t := range trades {
		totalPnl += t.Pnl
		holdBars += t.BarsHeld
		if t.Pnl > 0 {
			m.Winners++
			grossWins += t.Pnl
			if t.Pnl > largestWin {
				largestWin = t.Pnl
			}
		} else {
			m.Losers++
			grossLosses += -t.Pnl
			if t.Pnl < largestLoss {
				largestLoss = t.Pnl
			}
		}
	}

	if len(trades) > 0 {
		m.WinRate = int(math.Round(float64(m.Winners) / float64(len(trades)) * 100))
		m.AvgHoldBars = int(math.Round(float64(holdBars) / float64(len(trades))))
	}
	if m.Winners > 0 {
		m.AvgWin = round2(grossWins / float64(m.Winners))
	}
	if m.Losers > 0 {
		m.AvgLoss = round2(grossLosses / float64(m.Losers))
	}
	m.LargestWin = round2(largestWin)
	m.LargestLoss = round2(largestLoss)
	m.TotalPnl = round2(totalPnl)
	if initialCapital > 0 {
		m.TotalPnlPct = round2(totalPnl / initialCapital * 100)
	}

	switch {
	case grossLosses > 0:
		m.ProfitFactor = round2(grossWins / grossLosses)
	case grossWins > 0:
		m.ProfitFactor = math.Inf(1)
	}

	m.MaxDrawdown, m.MaxDrawdownPct = maxDrawdown(curve, initialCapital)
	m.SharpeRatio = sharpeRatio(curve)
	return m
}

// maxDrawdown measures the largest peak-to-trough equity drop. The peak
// starts at initial capital, so a curve that only ever sits below it
// still registers a drawdown.
func maxDrawdown(curve []models.EquityPoint, initialCapital float64) (abs, pct float64) {
	peak := initialCapital
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		dd := peak - p.Equity
		if dd > abs {
			abs = dd
			if peak > 0 {
				pct = dd / peak * 100
			}
		}
	}
	return round2(abs), round2(pct)
}

// sharpeRatio annualizes day-over-day equity returns. The curve is
// collapsed to one point per calendar day (the last sample wins) before
// returns are taken.
func sharpeRatio(curve []models.EquityPoint) float64 {
	daily := make(map[string]float64)
	var days []string
	for _, p := range curve {
		day := p.Timestamp.UTC().Format("2006-01-02")
		if _, seen := daily[day]; !seen {
			days = append(days, day)
		}
		daily[day] = p.Equity
	}
	sort.Strings(days)

	var returns []float64
	for i := 1; i < len(days); i++ {
		prev := daily[days[i-1]]
		if prev == 0 {
			continue
		}
		returns = append(returns, (daily[days[i]]-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}
	return round2(mean / stddev * math.Sqrt(252))
}

// sessionBreakdown groups completed trades by the session they were
// entered in, most profitable first.
func sessionBreakdown(trades []models.BacktestTrade) []models.SessionBreakdown {
	bySession := make(map[models.SessionName]*models.SessionBreakdown)
	for _, t := range trades {
		b, ok := bySession[t.Session]
		if !ok {
			b = &models.SessionBreakdown{Session: t.Session}
			bySession[t.Session] = b
		}
		b.Trades++
		b.Pnl += t.Pnl
		if t.Pnl > 0 {
			b.Wins++
		}
	}

	out := make([]models.SessionBreakdown, 0, len(bySession))
	for _, b := range bySession {
		b.Pnl = round2(b.Pnl)
		b.WinRate = int(math.Round(float64(b.Wins) / float64(b.Trades) * 100))
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pnl > out[j].Pnl })
	return out
}
