package usecase

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"EdgeRunner/internal/domain/models"
	"EdgeRunner/internal/domain/repository"
	"EdgeRunner/pkg/logger"
)

// BacktestRunner owns the set of in-flight and finished runs. Runs
// execute on their own goroutine; readers always see a consistent copy.
type BacktestRunner struct {
	engine *BacktestEngine
	store  repository.ResultStore
	log    *logger.Logger

	mu   sync.RWMutex
	runs map[string]*models.BacktestResult
}

func NewBacktestRunner(engine *BacktestEngine, store repository.ResultStore, log *logger.Logger) *BacktestRunner {
	return &BacktestRunner{
		engine: engine,
		store:  store,
		log:    log,
		runs:   make(map[string]*models.BacktestResult),
	}
}

// Start registers a run and launches it in the background, returning the
// run id immediately.
func (r *BacktestRunner) Start(cfg models.BacktestConfig) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.runs[id] = &models.BacktestResult{
		ID:     id,
		Config: cfg,
		Status: models.BacktestRunning,
	}
	r.mu.Unlock()

	go r.execute(id, cfg)
	return id
}

func (r *BacktestRunner) execute(id string, cfg models.BacktestConfig) {
	ctx := context.Background()

	res := r.engine.Run(ctx, id, cfg, func(progress float64) {
		r.mu.Lock()
		if run, ok := r.runs[id]; ok {
			run.Progress = progress
		}
		r.mu.Unlock()
	})

	r.mu.Lock()
	r.runs[id] = res
	r.mu.Unlock()

	if r.store != nil {
		if err := r.store.SaveResult(ctx, res); err != nil {
			r.log.Error("persist backtest result",
				logger.String("id", id),
				logger.Error(err))
		} else if err := r.store.SaveTrades(ctx, id, res.Trades); err != nil {
			r.log.Error("persist backtest trades",
				logger.String("id", id),
				logger.Error(err))
		}
	}
}

// Get returns a copy of one run's current state.
func (r *BacktestRunner) Get(id string) (models.BacktestResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.runs[id]
	if !ok {
		return models.BacktestResult{}, false
	}
	return *run, true
}

// List summarizes every known run, newest progress first by id order.
func (r *BacktestRunner) List() []models.BacktestSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.BacktestSummary, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, models.BacktestSummary{
			ID:       run.ID,
			Symbol:   run.Config.Symbol,
			Status:   run.Status,
			Progress: run.Progress,
			TotalPnl: run.Metrics.TotalPnl,
			Trades:   run.Metrics.TotalTrades,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
