// Package scheduler drives the live analysis cadence. Ticks are gated
// to futures trading hours: Sunday 6pm through Friday 5pm ET, with the
// daily 5-6pm ET maintenance break excluded.
package scheduler

import (
	"context"
	"fmt"
	"time"

	applogger "EdgeRunner/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron tasks of the live agent.
type Scheduler struct {
	cron *cron.Cron
	l    *applogger.Logger
	ny   *time.Location
	now  func() time.Time
}

// New creates a Scheduler.
func New(l *applogger.Logger) (*Scheduler, error) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("load market timezone: %w", err)
	}
	return &Scheduler{
		cron: cron.New(),
		l:    l,
		ny:   ny,
		now:  time.Now,
	}, nil
}

// RegisterAnalysis schedules the pipeline tick at the given cadence.
// Ticks outside market hours are skipped, not queued.
func (s *Scheduler) RegisterAnalysis(ctx context.Context, every time.Duration, tick func(context.Context)) error {
	minutes := int(every.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	expr := fmt.Sprintf("*/%d * * * *", minutes)
	_, err := s.cron.AddFunc(expr, func() {
		if !s.InMarketHours() {
			s.l.Debug("outside market hours, skipping analysis tick")
			return
		}
		tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("register analysis tick: %w", err)
	}
	s.l.Info("analysis tick registered", applogger.String("cron", expr))
	return nil
}

// RegisterStopChecks schedules a per-minute bracket check against live
// prices while the market is open.
func (s *Scheduler) RegisterStopChecks(ctx context.Context, check func(context.Context)) error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if !s.InMarketHours() {
			return
		}
		check(ctx)
	})
	if err != nil {
		return fmt.Errorf("register stop checks: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.l.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.l.Info("scheduler stopped")
}

// InMarketHours reports whether futures trade at the current instant:
// Sunday 6pm ET through Friday 5pm ET, minus the daily 5-6pm ET break.
func (s *Scheduler) InMarketHours() bool {
	ny := s.now().In(s.ny)
	day := ny.Weekday()
	totalMin := ny.Hour()*60 + ny.Minute()

	if day == time.Saturday {
		return false
	}
	if day == time.Sunday && totalMin < 18*60 {
		return false
	}
	if day == time.Friday && totalMin >= 17*60 {
		return false
	}
	if totalMin >= 17*60 && totalMin < 18*60 {
		return false
	}
	return true
}
