package models

import "time"

type OrderSide string

const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderFilled    OrderStatus = "filled"
	OrderCancelled OrderStatus = "cancelled"
	OrderRejected  OrderStatus = "rejected"
)

type OrderType string

const (
	OrderMarket OrderType = "market"
	OrderLimit  OrderType = "limit"
)

// OrderRequest is a bracket order emitted by the risk evaluator.
type OrderRequest struct {
	Symbol            string    `json:"symbol"`
	Side              OrderSide `json:"side"`
	Qty               int       `json:"qty"`
	Type              OrderType `json:"type"`
	LimitPrice        float64   `json:"limitPrice,omitempty"`
	StopLossPrice     float64   `json:"stopLossPrice"`
	TakeProfitPrice   float64   `json:"takeProfitPrice"`
	Confidence        int       `json:"confidence"`
	ChecklistSnapshot string    `json:"checklistSnapshot"` // serialized checklist items
}

type OrderResult struct {
	OrderID     string      `json:"orderId"`
	Status      OrderStatus `json:"status"`
	FilledPrice float64     `json:"filledPrice,omitempty"`
	FilledAt    time.Time   `json:"filledAt,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// Position is a single open holding. The broker model is one position
// per symbol.
type Position struct {
	Symbol        string    `json:"symbol"`
	Side          OrderSide `json:"side"`
	Qty           int       `json:"qty"`
	AvgEntryPrice float64   `json:"avgEntryPrice"`
	CurrentPrice  float64   `json:"currentPrice"`
	UnrealizedPnl float64   `json:"unrealizedPnl"`
	OpenedAt      time.Time `json:"openedAt"`
}

// AccountState is a broker account summary used by the risk evaluator.
type AccountState struct {
	Cash       float64    `json:"cash"`
	Equity     float64    `json:"equity"`
	Positions  []Position `json:"positions"`
	DayPnl     float64    `json:"dayPnl"`
	TotalPnl   float64    `json:"totalPnl"`
	TradeCount int        `json:"tradeCount"`
	WinRate    int        `json:"winRate"`
}

// RiskDecision is the risk evaluator's verdict. Approved implies a
// non-nil order with positive size.
type RiskDecision struct {
	Approved     bool          `json:"approved"`
	Reason       string        `json:"reason"`
	Order        *OrderRequest `json:"order"`
	StopLoss     float64       `json:"stopLoss"`
	TakeProfit   float64       `json:"takeProfit"`
	PositionSize int           `json:"positionSize"`
}
