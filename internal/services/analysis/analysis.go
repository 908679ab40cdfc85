// Package analysis holds the pattern analyzers. Every function here is
// pure: it reads a snapshot (plus the current price, plus a peer
// snapshot for SMT) and returns a signal, with no side effects and no
// state across calls.
package analysis

import (
	"time"

	"EdgeRunner/internal/domain/models"
)

// Run executes all eleven analyzers against one snapshot in their fixed
// registration order and assembles the bundle the scorer consumes. The
// session window is derived from the explicit instant, never from the
// wall clock, so live and backtest paths behave identically.
func Run(snap *models.BarSnapshot, currentPrice float64, peer *models.BarSnapshot, at time.Time) models.SignalBundle {
	return models.SignalBundle{
		Symbol:       snap.Symbol,
		Timestamp:    at,
		Cic:          Cic(snap),
		DailyProfile: DailyProfile(snap),
		SessionTime:  SessionTime(at),
		KeyLevels:    KeyLevels(snap, currentPrice),
		Fvg:          Fvg(snap, currentPrice),
		Cisd:         Cisd(snap),
		Smt:          Smt(snap, peer),
		Wick:         Wick(snap),
		Psp:          Psp(snap, currentPrice),
		Dol:          Dol(snap, currentPrice),
		Vshape:       Vshape(snap),
	}
}
