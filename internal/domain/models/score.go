package models

import "time"

// TradeBias is the directional conclusion of the scorer.
type TradeBias string

const (
	BiasLong    TradeBias = "long"
	BiasShort   TradeBias = "short"
	BiasNeutral TradeBias = "neutral"
)

// ChecklistItem is one weighted criterion in the scoring checklist.
type ChecklistItem struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
	Pass   bool   `json:"pass"`
	Value  string `json:"value"`
	Detail string `json:"detail"`
}

// ScoreResult fuses the signal bundle into a confidence and a bias.
type ScoreResult struct {
	Symbol      string          `json:"symbol"`
	Timestamp   time.Time       `json:"timestamp"`
	TotalScore  int             `json:"totalScore"`
	MaxScore    int             `json:"maxScore"`
	Confidence  int             `json:"confidence"` // 0-100
	Bias        TradeBias       `json:"bias"`
	Items       []ChecklistItem `json:"items"`
	ShouldTrade bool            `json:"shouldTrade"`
	Reason      string          `json:"reason"`
}
