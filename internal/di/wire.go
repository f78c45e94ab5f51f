//go:build wireinject
// +build wireinject

package di

import (
	"StorkPull/pkg/config"
	"StorkPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideSessionStore,
		ProvideOracle,
		ProvideProxyPool,

		// Use cases
		ProvideAssignments,
		ProvideFleet,

		// HTTP
		ProvideStatusHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
