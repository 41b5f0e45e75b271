package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

// MarketSubmitter accepts price observations for routing.
type MarketSubmitter interface {
	SubmitMarket(ctx context.Context, obs models.PriceObservation) error
}

// MarketCollector reads one venue stream and feeds the router.
type MarketCollector struct {
	name    string
	stream  drepo.MarketStream
	subs    *SubscriptionManager
	router  MarketSubmitter
	metrics drepo.Metrics
	logger  *applogger.Logger
	backoff time.Duration
	done    chan struct{}
	started atomic.Bool
}

// NewMarketCollector creates a collector. subs supplies the symbols to
// resubscribe after a reconnect.
func NewMarketCollector(name string, stream drepo.MarketStream, subs *SubscriptionManager, router MarketSubmitter, metrics drepo.Metrics, logger *applogger.Logger) *MarketCollector {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &MarketCollector{
		name:    name,
		stream:  stream,
		subs:    subs,
		router:  router,
		metrics: metrics,
		logger:  logger.With("collector_" + name),
		backoff: time.Second,
		done:    make(chan struct{}),
	}
}

// Name returns the venue label of the collector.
func (c *MarketCollector) Name() string { return c.name }

// IsConnected returns true if the market stream is connected.
func (c *MarketCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects the stream, subscribes the monitored set and begins reading.
func (c *MarketCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if syms := c.subs.Symbols(); len(syms) > 0 {
		if err := c.stream.Subscribe(ctx, syms...); err != nil {
			return err
		}
	}
	obsCh, errCh := c.stream.Read(ctx)
	if !c.started.CompareAndSwap(false, true) {
		return nil
	}
	go c.consume(ctx, obsCh, errCh)
	c.logger.Info("market collector started", applogger.Int("symbols", len(c.subs.Symbols())))
	return nil
}

func (c *MarketCollector) consume(ctx context.Context, obsCh <-chan *models.PriceObservation, errCh <-chan error) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				return
			}
			if err != nil {
				c.metrics.RecordError("stream_" + c.name)
				c.logger.Warn("stream error, reconnecting", applogger.Error(err))
				c.reconnect(ctx)
			}
		case obs, ok := <-obsCh:
			if !ok {
				return
			}
			if obs == nil {
				continue
			}
			err := c.router.SubmitMarket(ctx, *obs)
			if err != nil && !errors.Is(err, models.ErrQueueFull) && !errors.Is(err, models.ErrThrottled) {
				c.logger.Debug("observation not routed",
					applogger.String("asset", obs.Asset.Symbol),
					applogger.Error(err))
			}
		}
	}
}

func (c *MarketCollector) reconnect(ctx context.Context) {
	delay := c.backoff
	for {
		if err := c.stream.Reconnect(ctx); err == nil {
			if syms := c.subs.Symbols(); len(syms) > 0 {
				if err := c.stream.Subscribe(ctx, syms...); err != nil {
					c.logger.Warn("resubscribe failed", applogger.Error(err))
				}
			}
			return
		}
		c.metrics.RecordError("stream_reconnect_" + c.name)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		if delay < 30*time.Second {
			delay *= 2
		}
	}
}

// Shutdown closes the stream and waits for the reader to exit.
func (c *MarketCollector) Shutdown(ctx context.Context) error {
	err := c.stream.Close()
	if !c.started.Load() {
		return err
	}
	select {
	case <-c.done:
	case <-ctx.Done():
	}
	return err
}
