package analysis

import (
	"fmt"
	"time"

	"EdgeRunner/internal/domain/models"
)

// The futures trading day in New York wall-clock time. Windows are
// half-open [start, end); only asia wraps midnight.
type sessionWindow struct {
	name            models.SessionName
	startHour       int
	startMinute     int
	endHour         int
	endMinute       int
	highProbability bool
	crossesMidnight bool
}

var sessionTable = []sessionWindow{
	{name: models.SessionGlobex, startHour: 18, endHour: 20},
	{name: models.SessionAsia, startHour: 20, endHour: 3, crossesMidnight: true},
	{name: models.SessionLondon, startHour: 3, endHour: 8},
	{name: models.SessionNYPremarket, startHour: 8, endHour: 9, endMinute: 30},
	{name: models.SessionNYOpen, startHour: 9, startMinute: 30, endHour: 10, highProbability: true},
	{name: models.SessionNYAM, startHour: 10, endHour: 12, highProbability: true},
	{name: models.SessionNYLunch, startHour: 12, endHour: 13, endMinute: 30},
	{name: models.SessionNYPM, startHour: 13, startMinute: 30, endHour: 15, highProbability: true},
	{name: models.SessionNYClose, startHour: 15, endHour: 16},
	{name: models.SessionSettle, startHour: 16, endHour: 17},
	{name: models.SessionDailyBreak, startHour: 17, endHour: 18},
}

var nyLocation *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	nyLocation = loc
}

// SessionAt maps an instant to its New York session window. The same
// function serves the live path (pass time.Now()) and the backtest path
// (pass the bar timestamp), so both share identical window logic.
func SessionAt(t time.Time) models.SessionName {
	ny := t.In(nyLocation)
	totalMin := ny.Hour()*60 + ny.Minute()

	for _, s := range sessionTable {
		startMin := s.startHour*60 + s.startMinute
		endMin := s.endHour*60 + s.endMinute

		var in bool
		if s.crossesMidnight || startMin > endMin {
			in = totalMin >= startMin || totalMin < endMin
		} else {
			in = totalMin >= startMin && totalMin < endMin
		}
		if in {
			return s.name
		}
	}
	return models.SessionClosed
}

// IsHighProbability reports whether a session is one of the preferred
// trading windows (ny_open, ny_am, ny_pm).
func IsHighProbability(name models.SessionName) bool {
	for _, s := range sessionTable {
		if s.name == name {
			return s.highProbability
		}
	}
	return false
}

// SessionTime builds the full session signal for an instant.
func SessionTime(t time.Time) models.SessionTimeSignal {
	ny := t.In(nyLocation)
	totalMin := ny.Hour()*60 + ny.Minute()

	for _, s := range sessionTable {
		startMin := s.startHour*60 + s.startMinute
		endMin := s.endHour*60 + s.endMinute

		var in bool
		if s.crossesMidnight || startMin > endMin {
			in = totalMin >= startMin || totalMin < endMin
		} else {
			in = totalMin >= startMin && totalMin < endMin
		}
		if !in {
			continue
		}

		minutesIn := totalMin - startMin
		if s.crossesMidnight && totalMin < endMin {
			minutesIn = totalMin + (24*60 - startMin)
		}
		prob := "low probability"
		if s.highProbability {
			prob = "high probability"
		}
		return models.SessionTimeSignal{
			CurrentSession:    s.name,
			HighProbability:   s.highProbability,
			MinutesIntoWindow: minutesIn,
			Description:       fmt.Sprintf("%s session (%s)", s.name, prob),
		}
	}

	return models.SessionTimeSignal{
		CurrentSession: models.SessionClosed,
		Description:    "Market closed (weekend)",
	}
}
