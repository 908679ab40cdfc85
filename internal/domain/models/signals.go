package models

import "time"

// Direction tags a signal as pointing up or down.
type Direction string

const (
	DirBullish Direction = "bullish"
	DirBearish Direction = "bearish"
)

// CicType classifies a 15m candle relative to its predecessor.
type CicType string

const (
	CicExpansion   CicType = "C1"
	CicRetracement CicType = "C2"
	CicReversal    CicType = "C3"
	CicInsideBar   CicType = "C4"
)

type CicSignal struct {
	Type        CicType   `json:"type"`
	Timeframe   Timeframe `json:"timeframe"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// DailyProfileType describes the order today's extremes were made in.
// OHLC (high before low) reads bearish, OLHC (low before high) bullish.
type DailyProfileType string

const (
	ProfileOHLC DailyProfileType = "OHLC"
	ProfileOLHC DailyProfileType = "OLHC"
)

type DailyProfileSignal struct {
	Type DailyProfileType `json:"type"`
	Date string           `json:"date"`
	Bias Direction        `json:"bias"`
}

// SessionName is one of the New York trading-day windows.
type SessionName string

const (
	SessionGlobex      SessionName = "globex"
	SessionAsia        SessionName = "asia"
	SessionLondon      SessionName = "london"
	SessionNYPremarket SessionName = "ny_premarket"
	SessionNYOpen      SessionName = "ny_open"
	SessionNYAM        SessionName = "ny_am"
	SessionNYLunch     SessionName = "ny_lunch"
	SessionNYPM        SessionName = "ny_pm"
	SessionNYClose     SessionName = "ny_close"
	SessionSettle      SessionName = "settle"
	SessionDailyBreak  SessionName = "daily_break"
	SessionClosed      SessionName = "closed"
)

type SessionTimeSignal struct {
	CurrentSession    SessionName `json:"currentSession"`
	HighProbability   bool        `json:"isHighProbabilityWindow"`
	MinutesIntoWindow int         `json:"minutesIntoSession"`
	Description       string      `json:"description"`
}

// KeyLevelType identifies which reference level a price belongs to.
type KeyLevelType string

const (
	LevelPDH  KeyLevelType = "pdh"
	LevelPDL  KeyLevelType = "pdl"
	LevelPWH  KeyLevelType = "pwh"
	LevelPWL  KeyLevelType = "pwl"
	LevelPMH  KeyLevelType = "pmh"
	LevelPML  KeyLevelType = "pml"
	LevelOpen KeyLevelType = "open"
)

type KeyLevel struct {
	Label string       `json:"label"`
	Price float64      `json:"price"`
	Type  KeyLevelType `json:"type"`
}

type KeyLevelsSignal struct {
	Levels       []KeyLevel `json:"levels"`
	NearestAbove *KeyLevel  `json:"nearestAbove"`
	NearestBelow *KeyLevel  `json:"nearestBelow"`
	CurrentPrice float64    `json:"currentPrice"`
}

// Fvg is a three-candle fair value gap.
type Fvg struct {
	Direction Direction `json:"direction"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Midpoint  float64   `json:"midpoint"`
	Timestamp time.Time `json:"timestamp"`
	Timeframe Timeframe `json:"timeframe"`
	Filled    bool      `json:"filled"`
}

type FvgSignal struct {
	Gaps            []Fvg `json:"fvgs"`
	NearestUnfilled *Fvg  `json:"nearestUnfilled"`
}

type CisdSignal struct {
	Detected    bool      `json:"detected"`
	Direction   Direction `json:"direction,omitempty"`
	SwingBroken float64   `json:"swingBroken"`
	ClosePrice  float64   `json:"closePrice"`
	Timestamp   time.Time `json:"timestamp"`
}

type SmtSignal struct {
	Detected       bool      `json:"detected"`
	SymbolA        string    `json:"symbolA"`
	SymbolB        string    `json:"symbolB"`
	DivergenceType Direction `json:"divergenceType,omitempty"`
	Description    string    `json:"description"`
}

// WickSignificance buckets wick size relative to ATR.
type WickSignificance string

const (
	WickLow    WickSignificance = "low"
	WickMedium WickSignificance = "medium"
	WickHigh   WickSignificance = "high"
)

type WickSignal struct {
	TopWickRatio    float64          `json:"topWickRatio"`
	BottomWickRatio float64          `json:"bottomWickRatio"`
	BodyRatio       float64          `json:"bodyRatio"`
	ATR14           float64          `json:"atr14"`
	WickToATRRatio  float64          `json:"wickToAtrRatio"`
	Significance    WickSignificance `json:"significance"`
}

// SwingPoint is a pivot high or low with its protection status.
type SwingPoint struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Protected bool      `json:"protected"`
}

type PspSignal struct {
	SwingHighs           []SwingPoint `json:"swingHighs"`
	SwingLows            []SwingPoint `json:"swingLows"`
	NearestProtectedHigh float64      `json:"nearestProtectedHigh"`
	NearestProtectedLow  float64      `json:"nearestProtectedLow"`
	HasProtectedHigh     bool         `json:"hasProtectedHigh"`
	HasProtectedLow      bool         `json:"hasProtectedLow"`
}

// DolDirection says whether the liquidity target sits above or below price.
type DolDirection string

const (
	DolAbove DolDirection = "above"
	DolBelow DolDirection = "below"
)

type DolSignal struct {
	Target          float64      `json:"target"`
	HasTarget       bool         `json:"hasTarget"`
	TargetLabel     string       `json:"targetLabel"`
	Direction       DolDirection `json:"direction,omitempty"`
	Distance        float64      `json:"distance"`
	DistancePercent float64      `json:"distancePercent"`
}

type VshapeSignal struct {
	Detected   bool      `json:"detected"`
	Direction  Direction `json:"direction,omitempty"`
	PivotPrice float64   `json:"pivotPrice"`
	Timestamp  time.Time `json:"timestamp"`
	Strength   int       `json:"strength"`
}

// SignalBundle carries one result from every analysis module for a single
// symbol at a single instant. It is the scorer's only input.
type SignalBundle struct {
	Symbol       string             `json:"symbol"`
	Timestamp    time.Time          `json:"timestamp"`
	Cic          CicSignal          `json:"cic"`
	DailyProfile DailyProfileSignal `json:"dailyProfile"`
	SessionTime  SessionTimeSignal  `json:"sessionTime"`
	KeyLevels    KeyLevelsSignal    `json:"keyLevels"`
	Fvg          FvgSignal          `json:"fvg"`
	Cisd         CisdSignal         `json:"cisd"`
	Smt          SmtSignal          `json:"smt"`
	Wick         WickSignal         `json:"wick"`
	Psp          PspSignal          `json:"psp"`
	Dol          DolSignal          `json:"dol"`
	Vshape       VshapeSignal       `json:"vshape"`
}
