//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"reployer/internal"
	"reployer/internal/clock"
	"reployer/internal/controllers"
	"reployer/internal/fastdl"
	"reployer/internal/feed"
	"reployer/internal/history"
	"reployer/internal/poller"
	"reployer/internal/providers"
	"reployer/internal/services"
	"reployer/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewSoundProvider,
		providers.NewRedisProvider,
		clock.New,

		history.NewZstdCompressor,
		history.NewCSVStore,
		history.NewScheduler,

		services.NewScheduleCalculator,
		services.NewNotificationGate,
		services.NewSnapshotStore,
		services.NewMonitorService,

		poller.NewA2SQuerier,
		poller.NewServerPoller,
		wire.Bind(new(controllers.Refresher), new(*poller.ServerPoller)),
		feed.NewViewFeed,

		controllers.NewStreamController,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.NewMonitorSinks,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitDownloader(cfg *structures.CliFlags) (*fastdl.Downloader, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		fastdl.NewDownloader,
	)

	return nil, nil
}
