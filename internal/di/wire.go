//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvidePostStore,
		ProvidePublisher,
		ProvideResultCache,
		ProvideRegistry,
		ProvideClassifier,

		// Use cases
		ProvideIngestor,
		ProvideAggregator,

		// Transport
		ProvideHTTPHandler,
		ProvideKafkaConsumer,
		ProvideKafkaItemsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
