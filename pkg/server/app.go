package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"EdgeRunner/internal/domain/repository"
	"EdgeRunner/internal/scheduler"
	"EdgeRunner/internal/usecase"
	pkgch "EdgeRunner/pkg/clickhouse"
	"EdgeRunner/pkg/config"
	xhttp "EdgeRunner/pkg/http"
	applogger "EdgeRunner/pkg/logger"
)

// App encapsulates the entire application lifecycle: the HTTP surface,
// the scheduled live pipeline and the shared infrastructure clients.
type App struct {
	cfg       *config.Config
	l         *applogger.Logger
	pipeline  *usecase.Pipeline
	handler   xhttp.Handler
	sched     *scheduler.Scheduler
	broker    repository.Broker
	stream    repository.QuoteStream
	store     repository.ResultStore
	publisher repository.DecisionPublisher
	chClient  *pkgch.Client

	httpServer *xhttp.Server

	mu     sync.Mutex
	prices map[string]float64
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	handler xhttp.Handler,
	sched *scheduler.Scheduler,
	broker repository.Broker,
	stream repository.QuoteStream,
	store repository.ResultStore,
	publisher repository.DecisionPublisher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		pipeline:  pipeline,
		handler:   handler,
		sched:     sched,
		broker:    broker,
		stream:    stream,
		store:     store,
		publisher: publisher,
		chClient:  chClient,
		prices:    make(map[string]float64),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.stream != nil {
		go a.consumeStream(ctx)
	}

	if err := a.sched.RegisterAnalysis(ctx, a.cfg.AnalysisInterval, a.analysisTick); err != nil {
		return err
	}
	if err := a.sched.RegisterStopChecks(ctx, a.stopCheckTick); err != nil {
		return err
	}
	a.sched.Start()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("agent started",
		applogger.String("mode", a.cfg.Mode),
		applogger.Strings("symbols", a.cfg.Symbols),
		applogger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// analysisTick runs the full pipeline for every configured symbol.
func (a *App) analysisTick(ctx context.Context) {
	for _, symbol := range a.cfg.Symbols {
		res, err := a.pipeline.RunSymbol(ctx, symbol)
		if err != nil {
			a.l.Error("pipeline run failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			continue
		}
		a.l.Info("symbol analyzed",
			applogger.String("symbol", symbol),
			applogger.Int("confidence", res.Score.Confidence),
			applogger.String("bias", string(res.Score.Bias)),
			applogger.Bool("executed", res.TradeExecuted),
		)
	}
}

// stopCheckTick checks open brackets against the latest streamed prices.
func (a *App) stopCheckTick(ctx context.Context) {
	a.mu.Lock()
	prices := make(map[string]float64, len(a.prices))
	for k, v := range a.prices {
		prices[k] = v
	}
	a.mu.Unlock()

	if len(prices) == 0 {
		return
	}
	if err := a.broker.CheckStops(ctx, prices); err != nil {
		a.l.Error("stop check failed", applogger.Error(err))
	}
}

// consumeStream keeps the live price map current, reconnecting on error
// until the context ends.
func (a *App) consumeStream(ctx context.Context) {
	for ctx.Err() == nil {
		if err := a.stream.Connect(ctx); err != nil {
			a.l.Warn("stream connect failed", applogger.Error(err))
		} else if err := a.stream.Subscribe(ctx); err != nil {
			a.l.Warn("stream subscribe failed", applogger.Error(err))
			_ = a.stream.Close()
		} else {
			a.readStream(ctx)
			_ = a.stream.Close()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(a.cfg.Datafeed.ReconnectDelay):
		}
	}
}

func (a *App) readStream(ctx context.Context) {
	quotes, errs := a.stream.Read(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-quotes:
			if !ok {
				return
			}
			a.mu.Lock()
			a.prices[q.Symbol] = q.Price
			a.mu.Unlock()
		case err, ok := <-errs:
			if ok && err != nil {
				a.l.Warn("stream read error", applogger.Error(err))
			}
			return
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.l.Warn("stream close error", applogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	// The store owns the ClickHouse client; close one or the other.
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.l.Warn("result store close error", applogger.Error(err))
		}
	} else if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
