package models

import "time"

// Bar is one OHLCV record. Timestamps are UTC.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Timeframe Timeframe `json:"timeframe"`
	Symbol    string    `json:"symbol"`
}

// BarSnapshot is an immutable multi-timeframe view of a symbol's history
// as of a single instant. Every bar in every list satisfies
// bar.Timestamp <= AsOf, and each list is a suffix of the full series
// bounded by the snapshot lookback.
type BarSnapshot struct {
	Symbol string
	Bars   map[Timeframe][]Bar
	AsOf   time.Time
}

// Series returns the bars for one timeframe (nil if absent).
func (s *BarSnapshot) Series(tf Timeframe) []Bar {
	if s == nil || s.Bars == nil {
		return nil
	}
	return s.Bars[tf]
}

// Last returns the most recent bar of a timeframe, if any.
func (s *BarSnapshot) Last(tf Timeframe) (Bar, bool) {
	bars := s.Series(tf)
	if len(bars) == 0 {
		return Bar{}, false
	}
	return bars[len(bars)-1], true
}

// Quote is the latest traded price for a symbol.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}
