package models

// Requests for the agent HTTP endpoints. Defined in domain for consistency
// and reuse across handlers.

type RunBacktestRequest struct {
	Symbol         string  `json:"symbol" validate:"required"`
	StartDate      string  `json:"startDate" validate:"required"`
	EndDate        string  `json:"endDate" validate:"required"`
	InitialCapital float64 `json:"initialCapital" default:"100000" validate:"gt=0"`
	ScoreThreshold int     `json:"scoreThreshold" default:"65" validate:"gte=0,lte=100"`
	MaxDailyLoss   float64 `json:"maxDailyLoss" default:"2" validate:"gt=0,lte=100"`
	Timeframe      string  `json:"timeframe" default:"5m" validate:"oneof=5m 15m 1h 4h 1d"`
}

type RunBacktestResponse struct {
	ID     string         `json:"id"`
	Status BacktestStatus `json:"status"`
}

type AnalyzeRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}

type BacktestSummary struct {
	ID       string         `json:"id"`
	Symbol   string         `json:"symbol"`
	Status   BacktestStatus `json:"status"`
	Progress float64        `json:"progress"`
	TotalPnl float64        `json:"totalPnl"`
	Trades   int            `json:"trades"`
}
