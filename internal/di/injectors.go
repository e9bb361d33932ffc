//go:build wireinject
// +build wireinject

package di

import (
	"creatorstats/internal"
	"creatorstats/internal/controllers"
	"creatorstats/internal/providers"
	"creatorstats/internal/services"
	"creatorstats/internal/storage"
	"creatorstats/internal/structures"

	wire "github.com/google/wire"
)

var coreSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewMetricsProvider,
	providers.NewLocationProvider,
	providers.NewClockProvider,
	providers.NewHTTPClientProvider,

	storage.NewStoreProvider,
	services.NewPlatformRegistry,
	services.NewScheduler,
	wire.Bind(new(services.SchedulerInterface), new(*services.Scheduler)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		coreSet,
		providers.NewInstrumentedCacheProvider,

		services.NewAggregator,
		wire.Bind(new(services.AggregatorInterface), new(*services.Aggregator)),
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

func InitConsole(cfg *structures.CliFlags) (*internal.Console, func(), error) {

	wire.Build(
		coreSet,
		internal.NewConsole,
	)

	return nil, nil, nil
}
