//go:build wireinject
// +build wireinject

package di

import (
	"EdgeRunner/pkg/config"
	"EdgeRunner/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideResultStore,
		ProvideDecisionPublisher,
		ProvideDataProvider,
		ProvideBroker,
		ProvideQuoteStream,

		// Use cases
		ProvidePipeline,
		ProvideBacktestEngine,
		ProvideBacktestRunner,

		// Surface
		ProvideHandler,
		ProvideScheduler,
		ProvideApp,
	)
	return &server.App{}, nil
}
