//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"pointsd/internal"
	"pointsd/internal/controllers"
	"pointsd/internal/points"
	"pointsd/internal/providers"
	"pointsd/internal/services"
	"pointsd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		points.NewZstdCompressor,
		points.NewFileBackend,
		services.NewLedgerService,
		points.NewTracker,
		points.NewScheduler,
		controllers.NewPointsController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
