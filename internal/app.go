package internal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"reployer/internal/controllers"
	"reployer/internal/feed"
	"reployer/internal/history/interfaces"
	"reployer/internal/models"
	"reployer/internal/poller"
	"reployer/internal/providers"
	"reployer/internal/services"
	svcinterfaces "reployer/internal/services/interfaces"
	"reployer/internal/structures"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	WebServer *http.Server

	conf       *structures.Config
	logger     providers.Logger
	poller     *poller.ServerPoller
	monitor    *services.MonitorService
	feed       *feed.ViewFeed
	scheduler  interfaces.SchedulerInterface
	stream     *controllers.StreamController
	sinks      services.MonitorSinks
	compressor interfaces.CompressorInterface
}

// NewMonitorSinks lists every consumer of monitor snapshots.
func NewMonitorSinks(snapshots *services.SnapshotStore, stream *controllers.StreamController, redis svcinterfaces.SnapshotSinkInterface) services.MonitorSinks {
	return services.MonitorSinks{snapshots, stream, redis}
}

func NewApp(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	router providers.RouterProviderInterface,
	healthController *controllers.HealthController,
	streamController *controllers.StreamController,
	serverPoller *poller.ServerPoller,
	monitor *services.MonitorService,
	viewFeed *feed.ViewFeed,
	scheduler interfaces.SchedulerInterface,
	sinks services.MonitorSinks,
	compressor interfaces.CompressorInterface,
) *App {
	// Inner router: UI routes
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	// Outer router: infrastructure + instrumented UI routes
	r := mux.NewRouter()
	r.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	r.PathPrefix("/").Handler(providers.MetricsMiddleware(metrics, logger, apiMux))

	return &App{
		WebServer: &http.Server{
			Addr:        conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:     r,
			ReadTimeout: 5 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		conf:       conf,
		logger:     logger,
		poller:     serverPoller,
		monitor:    monitor,
		feed:       viewFeed,
		scheduler:  scheduler,
		stream:     streamController,
		sinks:      sinks,
		compressor: compressor,
	}
}

// Run serves until SIGINT or SIGTERM, then shuts down in order.
func (app *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.run(ctx)
}

func (app *App) run(ctx context.Context) error {
	defer app.logger.Close()

	logger := app.logger
	logger.Infof(providers.TypeApp, "Starting %s, monitoring %s", app.conf.AppName, app.conf.GameServer.Address)

	// the window must be seeded before the first append
	if err := app.scheduler.Restore(); err != nil {
		logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}
	_ = app.poller.ConnectionTest(ctx)
	app.monitor.Announce(models.EventLifecycle, app.conf.Notifications.OpenSound)
	app.scheduler.Init()

	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		if err := app.feed.Run(workCtx); err != nil {
			logger.Errorf(providers.TypeFeed, "View feed stopped: %s", err)
		}
	}()

	monitorDone := make(chan error, 1)
	go func() {
		monitorDone <- app.monitor.Run(workCtx, app.poller.Results(), app.feed.Updates())
	}()

	if err := app.poller.Start(workCtx); err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", app.WebServer.Addr)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	app.shutdown(cancelWork, monitorDone, feedDone)
	if runErr == nil {
		logger.Infof(providers.TypeApp, "gracefully stopped")
	}
	return runErr
}

func (app *App) shutdown(cancelWork context.CancelFunc, monitorDone <-chan error, feedDone <-chan struct{}) {
	logger := app.logger
	grace := app.conf.Poll.StopGrace

	if err := app.poller.Stop(grace); err != nil {
		logger.Warnf(providers.TypePoll, "Poller stop: %s", err)
	}

	// the monitor drains what the poller already queued
	select {
	case <-monitorDone:
	case <-time.After(grace):
		logger.Warnf(providers.TypeApp, "Monitor did not drain within %s", grace)
	}
	cancelWork()
	<-feedDone

	app.monitor.Announce(models.EventLifecycle, app.conf.Notifications.CloseSound)
	app.stream.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.WebServer.Shutdown(ctx); err != nil {
		logger.Errorf(providers.TypeApp, "HTTP shutdown: %s", err)
	}

	app.scheduler.Stop()
	if err := app.scheduler.Persist(); err != nil {
		logger.Errorf(providers.TypeHistory, "Persist: %s", err)
	}

	for _, sink := range app.sinks {
		if c, ok := sink.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warnf(providers.TypeApp, "Close sink: %s", err)
			}
		}
	}
	app.compressor.Close()
}
