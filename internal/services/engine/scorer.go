// Package engine fuses analyzer output into a trade decision: the
// weighted checklist scorer and the risk evaluator.
package engine

import (
	"fmt"
	"math"
	"strings"

	"EdgeRunner/internal/domain/models"
)

type checkResult struct {
	pass   bool
	value  string
	detail string
}

type criterion struct {
	id       string
	label    string
	weight   int
	evaluate func(s *Scorer, b *models.SignalBundle) checkResult
}

// Scorer evaluates the fixed checklist. KeyLevelProximity is the
// fraction of price within which a key level counts as "near"
// (default 0.005, i.e. 0.5%).
type Scorer struct {
	KeyLevelProximity float64
	DolMaxDistancePct float64
}

func NewScorer() *Scorer {
	return &Scorer{KeyLevelProximity: 0.005, DolMaxDistancePct: 1}
}

// checklist is the fixed, ordered set of criteria. One entry per
// analysis module; weights sum to 100.
var checklist = []criterion{
	{
		id: "cic", label: "Candle-in-Candle", weight: 10,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			return checkResult{
				pass:   b.Cic.Type == models.CicExpansion || b.Cic.Type == models.CicReversal,
				value:  string(b.Cic.Type),
				detail: b.Cic.Description,
			}
		},
	},
	{
		id: "daily_profile", label: "Daily Profile", weight: 8,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			// Always informational; contributes to bias only.
			return checkResult{
				pass:   true,
				value:  string(b.DailyProfile.Type),
				detail: fmt.Sprintf("%s day - %s bias", b.DailyProfile.Type, b.DailyProfile.Bias),
			}
		},
	},
	{
		id: "session_time", label: "Session Timing", weight: 12,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			return checkResult{
				pass:   b.SessionTime.HighProbability,
				value:  string(b.SessionTime.CurrentSession),
				detail: b.SessionTime.Description,
			}
		},
	},
	{
		id: "key_levels", label: "Near Key Level", weight: 10,
		evaluate: func(s *Scorer, b *models.SignalBundle) checkResult {
			nearest := b.KeyLevels.NearestAbove
			if nearest == nil {
				nearest = b.KeyLevels.NearestBelow
			}
			if nearest == nil {
				return checkResult{value: "none", detail: "No key levels found"}
			}
			dist := math.Abs(nearest.Price-b.KeyLevels.CurrentPrice) / b.KeyLevels.CurrentPrice
			return checkResult{
				pass:   dist < s.KeyLevelProximity,
				value:  fmt.Sprintf("%s @ %.2f", nearest.Label, nearest.Price),
				detail: fmt.Sprintf("%.2f%% from %s", dist*100, nearest.Label),
			}
		},
	},
	{
		id: "fvg", label: "Fair Value Gap", weight: 10,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			g := b.Fvg.NearestUnfilled
			if g == nil {
				return checkResult{value: "none", detail: "No unfilled FVGs nearby"}
			}
			return checkResult{
				pass:   true,
				value:  fmt.Sprintf("%s (%s)", g.Direction, g.Timeframe),
				detail: fmt.Sprintf("%s FVG %.2f-%.2f", g.Direction, g.Low, g.High),
			}
		},
	},
	{
		id: "cisd", label: "CISD", weight: 12,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			if !b.Cisd.Detected {
				return checkResult{value: "none", detail: "No CISD detected"}
			}
			return checkResult{
				pass:   true,
				value:  string(b.Cisd.Direction),
				detail: fmt.Sprintf("%s CISD - broke %.2f", b.Cisd.Direction, b.Cisd.SwingBroken),
			}
		},
	},
	{
		id: "smt", label: "SMT Divergence", weight: 8,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			value := "none"
			if b.Smt.Detected {
				value = string(b.Smt.DivergenceType)
			}
			return checkResult{pass: b.Smt.Detected, value: value, detail: b.Smt.Description}
		},
	},
	{
		id: "wick", label: "Wick Analysis", weight: 8,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			return checkResult{
				pass:   b.Wick.Significance == models.WickHigh,
				value:  string(b.Wick.Significance),
				detail: fmt.Sprintf("Wick/ATR: %.2f (%s)", b.Wick.WickToATRRatio, b.Wick.Significance),
			}
		},
	},
	{
		id: "psp", label: "Protected Swing Points", weight: 8,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			if !b.Psp.HasProtectedHigh && !b.Psp.HasProtectedLow {
				return checkResult{value: "none", detail: "No protected swing points nearby"}
			}
			high, low := "-", "-"
			if b.Psp.HasProtectedHigh {
				high = fmt.Sprintf("%.2f", b.Psp.NearestProtectedHigh)
			}
			if b.Psp.HasProtectedLow {
				low = fmt.Sprintf("%.2f", b.Psp.NearestProtectedLow)
			}
			return checkResult{
				pass:   true,
				value:  "found",
				detail: fmt.Sprintf("Protected H: %s, L: %s", high, low),
			}
		},
	},
	{
		id: "dol", label: "Draw on Liquidity", weight: 8,
		evaluate: func(s *Scorer, b *models.SignalBundle) checkResult {
			if !b.Dol.HasTarget || b.Dol.DistancePercent >= s.DolMaxDistancePct {
				detail := "No DOL identified"
				if b.Dol.HasTarget {
					detail = fmt.Sprintf("%s @ %.2f (%.2f%% away - too far)", b.Dol.TargetLabel, b.Dol.Target, b.Dol.DistancePercent)
				}
				return checkResult{value: b.Dol.TargetLabel, detail: detail}
			}
			return checkResult{
				pass:   true,
				value:  b.Dol.TargetLabel,
				detail: fmt.Sprintf("%s @ %.2f (%s, %.2f%% away)", b.Dol.TargetLabel, b.Dol.Target, b.Dol.Direction, b.Dol.DistancePercent),
			}
		},
	},
	{
		id: "vshape", label: "V-Shape Reversal", weight: 6,
		evaluate: func(_ *Scorer, b *models.SignalBundle) checkResult {
			if !b.Vshape.Detected {
				return checkResult{value: "none", detail: "No V-shape detected"}
			}
			return checkResult{
				pass:   true,
				value:  string(b.Vshape.Direction),
				detail: fmt.Sprintf("%s V-shape at %.2f (strength: %d)", b.Vshape.Direction, b.Vshape.PivotPrice, b.Vshape.Strength),
			}
		},
	},
}

// Score runs the weighted checklist, accumulates directional points and
// applies the DOL consistency correction. Confidence is totalScore as a
// percentage of the checklist maximum.
func (s *Scorer) Score(bundle *models.SignalBundle) models.ScoreResult {
	items := make([]models.ChecklistItem, 0, len(checklist))
	totalScore := 0
	maxScore := 0
	for _, c := range checklist {
		maxScore += c.weight
	}

	bullishPoints, bearishPoints := 0, 0

	for _, c := range checklist {
		res := c.evaluate(s, bundle)
		if res.pass {
			totalScore += c.weight

			val := strings.ToLower(res.value)
			if strings.Contains(val, "bullish") || val == "c1" || val == "olhc" {
				bullishPoints += c.weight
			}
			if strings.Contains(val, "bearish") || val == "c3" || val == "ohlc" {
				bearishPoints += c.weight
			}
		}
		items = append(items, models.ChecklistItem{
			ID:     c.id,
			Label:  c.label,
			Weight: c.weight,
			Pass:   res.pass,
			Value:  res.value,
			Detail: res.detail,
		})
	}

	// Daily profile always leans one way.
	if bundle.DailyProfile.Bias == models.DirBullish {
		bullishPoints += 5
	} else {
		bearishPoints += 5
	}

	// A detected CISD is the strongest directional cue.
	if bundle.Cisd.Detected {
		if bundle.Cisd.Direction == models.DirBullish {
			bullishPoints += 10
		} else {
			bearishPoints += 10
		}
	}

	prelimBias := biasFromPoints(bullishPoints, bearishPoints)

	// DOL direction must agree with the preliminary bias; if it does not,
	// the criterion's pass is revoked and its weight comes back off.
	if prelimBias != models.BiasNeutral && bundle.Dol.HasTarget {
		for i := range items {
			if items[i].ID != "dol" || !items[i].Pass {
				continue
			}
			matches := (prelimBias == models.BiasLong && bundle.Dol.Direction == models.DolAbove) ||
				(prelimBias == models.BiasShort && bundle.Dol.Direction == models.DolBelow)
			if !matches {
				items[i].Pass = false
				items[i].Detail += " [direction mismatch with bias]"
				totalScore -= items[i].Weight
			}
		}
	}

	confidence := int(math.Round(float64(totalScore) / float64(maxScore) * 100))
	bias := biasFromPoints(bullishPoints, bearishPoints)
	shouldTrade := confidence >= 60 && bias != models.BiasNeutral

	reason := fmt.Sprintf("%d%% confidence, %s bias - below threshold or no directional bias", confidence, bias)
	if shouldTrade {
		reason = fmt.Sprintf("%d%% confidence, %s bias - trade eligible", confidence, bias)
	}

	return models.ScoreResult{
		Symbol:      bundle.Symbol,
		Timestamp:   bundle.Timestamp,
		TotalScore:  totalScore,
		MaxScore:    maxScore,
		Confidence:  confidence,
		Bias:        bias,
		Items:       items,
		ShouldTrade: shouldTrade,
		Reason:      reason,
	}
}

// biasFromPoints applies the >5-point margin rule.
func biasFromPoints(bullish, bearish int) models.TradeBias {
	switch {
	case bullish > bearish+5:
		return models.BiasLong
	case bearish > bullish+5:
		return models.BiasShort
	default:
		return models.BiasNeutral
	}
}
