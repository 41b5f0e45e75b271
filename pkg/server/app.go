package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TradePulse/internal/domain/models"
	mid "TradePulse/internal/middleware"
	"TradePulse/internal/service/news"
	"TradePulse/internal/service/social"
	"TradePulse/internal/usecase"
	"TradePulse/pkg/config"
	xhttp "TradePulse/pkg/http"
	pkgkafka "TradePulse/pkg/kafka"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/queue"
)

// Components are the long-running parts of the pipeline. Consumer, Poller,
// Social, Queue and HTTP may be nil.
type Components struct {
	Sink       *mid.AsyncSink
	Router     *mid.PipelineRouter
	Discoverer *usecase.AssetDiscoverer
	Watcher    usecase.AssetWatcher
	Seeds      map[*usecase.SubscriptionManager][]models.Asset
	Collectors []*usecase.MarketCollector
	Consumer   *pkgkafka.Consumer
	Poller     *news.Poller
	Social     *social.Poller
	Queue      *queue.RedisQueue
	HTTP       *xhttp.Server
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg     *config.Config
	logger  *applogger.Logger
	c       Components
	cleanup func()
	cancel  context.CancelFunc
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, logger *applogger.Logger, c Components) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &App{cfg: cfg, logger: logger.With("app"), c: c}
}

// SetCleanup registers the resource release run after shutdown.
func (a *App) SetCleanup(f func()) { a.cleanup = f }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}
	<-ctx.Done()
	a.logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return a.Shutdown(shutdownCtx)
}

// Start brings the pipeline up: storage and routing first, then the venue
// registries, market streams, the monitored set and finally the ingestion
// sources. A failed venue bootstrap aborts startup.
func (a *App) Start(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	a.cancel = cancel

	a.c.Sink.Start(ctx)
	a.c.Router.Start(ctx)

	if err := a.c.Discoverer.Bootstrap(ctx); err != nil {
		return fmt.Errorf("startup: %w", err)
	}

	for _, col := range a.c.Collectors {
		a.startCollector(ctx, col)
	}

	for subs, assets := range a.c.Seeds {
		n := subs.Seed(ctx, assets, a.c.Watcher)
		a.logger.Info("monitored set seeded", applogger.Int("assets", n))
	}

	if a.c.Queue != nil {
		if err := a.c.Queue.Start(ctx); err != nil {
			return fmt.Errorf("order queue: %w", err)
		}
	}
	if a.c.Consumer != nil {
		if err := a.c.Consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		a.logger.Info("kafka consumer started")
	}
	if a.c.Poller != nil {
		if err := a.c.Poller.Start(ctx); err != nil {
			return fmt.Errorf("news poller: %w", err)
		}
	}
	if a.c.Social != nil {
		if err := a.c.Social.Start(ctx); err != nil {
			return fmt.Errorf("social poller: %w", err)
		}
	}
	if a.c.HTTP != nil {
		if err := a.c.HTTP.Start(); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	a.logger.Info("pipeline started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("mode", a.cfg.Trading.Mode))
	return nil
}

// startCollector connects a collector, retrying in the background until it
// succeeds or ctx ends.
func (a *App) startCollector(ctx context.Context, col *usecase.MarketCollector) {
	err := col.Start(ctx)
	if err == nil {
		return
	}
	a.logger.Warn("collector start failed, retrying",
		applogger.String("collector", col.Name()),
		applogger.Error(err))
	go func() {
		delay := a.cfg.Stream.ReconnectDelay
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			if err := col.Start(ctx); err != nil {
				a.logger.Warn("collector start failed",
					applogger.String("collector", col.Name()),
					applogger.Error(err))
				if delay < time.Minute {
					delay *= 2
				}
				continue
			}
			for subs, assets := range a.c.Seeds {
				subs.Seed(ctx, assets, a.c.Watcher)
			}
			return
		}
	}()
}

// Shutdown stops everything in reverse start order. Errors are logged and
// the first one is returned.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")
	var first error
	keep := func(what string, err error) {
		if err == nil {
			return
		}
		a.logger.Warn(what+" stop error", applogger.Error(err))
		if first == nil {
			first = err
		}
	}

	if a.c.HTTP != nil {
		keep("http", a.c.HTTP.Stop(ctx))
	}
	if a.c.Poller != nil {
		keep("news poller", a.c.Poller.Stop(ctx))
	}
	if a.c.Social != nil {
		keep("social poller", a.c.Social.Stop(ctx))
	}
	if a.c.Consumer != nil {
		keep("kafka consumer", a.c.Consumer.Stop(ctx))
	}
	for _, col := range a.c.Collectors {
		keep("collector "+col.Name(), col.Shutdown(ctx))
	}
	keep("router", a.c.Router.Stop(ctx))
	if a.c.Queue != nil {
		keep("order queue", a.c.Queue.Stop(ctx))
	}
	keep("sink", a.c.Sink.Stop(ctx))

	if a.cancel != nil {
		a.cancel()
	}
	if a.cleanup != nil {
		a.cleanup()
	}
	a.logger.Info("shutdown complete")
	return first
}
