package middleware

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/service/ratelimit"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/validate"

	"github.com/google/uuid"
)

// MarketSink consumes validated price observations.
type MarketSink interface {
	Update(ctx context.Context, obs models.PriceObservation) error
}

// TextSink consumes validated text events. Sinks report their own failures.
type TextSink interface {
	HandleTextEvent(ctx context.Context, ev models.TextEvent)
}

// RouterOption configures PipelineRouter.
type RouterOption func(*PipelineRouter)

// WithMarketLanes sets how many per-asset ordered lanes market events are
// sharded onto.
func WithMarketLanes(n int) RouterOption {
	return func(p *PipelineRouter) {
		if n > 0 {
			p.laneCount = n
		}
	}
}

// WithLaneSize sets the buffer of each market lane.
func WithLaneSize(n int) RouterOption {
	return func(p *PipelineRouter) {
		if n > 0 {
			p.laneSize = n
		}
	}
}

// WithTextWorkers sets how many text events are processed concurrently.
func WithTextWorkers(n int) RouterOption {
	return func(p *PipelineRouter) {
		if n > 0 {
			p.textWorkers = n
		}
	}
}

// WithTextQueueSize sets the buffer of the text queue.
func WithTextQueueSize(n int) RouterOption {
	return func(p *PipelineRouter) {
		if n > 0 {
			p.textSize = n
		}
	}
}

// WithMaxRPS throttles market events per asset with a token bucket.
func WithMaxRPS(n int) RouterOption {
	return func(p *PipelineRouter) {
		if n > 0 {
			p.limiter = ratelimit.New(float64(n), float64(n))
		}
	}
}

// WithRouterLogger sets the logger.
func WithRouterLogger(l *applogger.Logger) RouterOption {
	return func(p *PipelineRouter) {
		if l != nil {
			p.logger = l
		}
	}
}

// PipelineRouter is the single ingestion point. Market events are validated,
// throttled and sharded by asset onto single-goroutine lanes so per-asset
// order is kept. Text events are validated, tagged with a correlation id and
// fanned out to every text sink in parallel. All queues are bounded and drop
// the newest event when full.
type PipelineRouter struct {
	market  MarketSink
	text    []TextSink
	metrics domrepo.Metrics
	logger  *applogger.Logger
	limiter *ratelimit.Limiter
	newID   func() string
	now     func() time.Time

	laneCount   int
	laneSize    int
	textWorkers int
	textSize    int

	lanes  []chan models.PriceObservation
	textCh chan models.TextEvent

	mu      sync.RWMutex
	started bool
	closed  bool
	wg      sync.WaitGroup
}

// NewPipelineRouter creates a router. Call Start before submitting.
func NewPipelineRouter(market MarketSink, text []TextSink, metrics domrepo.Metrics, opts ...RouterOption) *PipelineRouter {
	p := &PipelineRouter{
		market:      market,
		text:        text,
		metrics:     metrics,
		logger:      applogger.Nop(),
		newID:       uuid.NewString,
		now:         time.Now,
		laneCount:   8,
		laneSize:    1024,
		textWorkers: 4,
		textSize:    256,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lanes = make([]chan models.PriceObservation, p.laneCount)
	for i := range p.lanes {
		p.lanes[i] = make(chan models.PriceObservation, p.laneSize)
	}
	p.textCh = make(chan models.TextEvent, p.textSize)
	return p
}

// Start launches the lane and text workers. Processing runs detached from
// ctx cancellation so queued events can drain during Stop.
func (p *PipelineRouter) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	runCtx := context.WithoutCancel(ctx)
	for i, lane := range p.lanes {
		p.wg.Add(1)
		go p.runLane(runCtx, i, lane)
	}
	for i := 0; i < p.textWorkers; i++ {
		p.wg.Add(1)
		go p.runText(runCtx)
	}
	p.logger.Info("pipeline router started",
		applogger.Int("market_lanes", p.laneCount),
		applogger.Int("text_workers", p.textWorkers))
}

// Stop closes the queues and waits for queued events to drain until ctx is done.
func (p *PipelineRouter) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	for _, lane := range p.lanes {
		close(lane)
	}
	close(p.textCh)
	started := p.started
	p.mu.Unlock()

	if !started {
		return nil
	}
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("router drain: %w", ctx.Err())
	}
}

// SubmitMarket validates, throttles and enqueues a live price observation.
// Ticks over the per-asset rate are rejected with ErrThrottled.
func (p *PipelineRouter) SubmitMarket(ctx context.Context, obs models.PriceObservation) error {
	if err := obs.Validate(); err != nil {
		p.metrics.RecordError("router_validate")
		return err
	}
	if !p.limiter.Allow(obs.Asset.Key()) {
		p.metrics.RecordDropped("market_throttle")
		return models.ErrThrottled
	}
	return p.enqueueMarket(obs)
}

// ReplayMarket validates and enqueues an observation from a durable feed.
// Replayed history is never throttled; a full lane returns ErrQueueFull so
// the caller can redeliver in order.
func (p *PipelineRouter) ReplayMarket(ctx context.Context, obs models.PriceObservation) error {
	if err := obs.Validate(); err != nil {
		p.metrics.RecordError("router_validate")
		return err
	}
	return p.enqueueMarket(obs)
}

func (p *PipelineRouter) enqueueMarket(obs models.PriceObservation) error {
	lane := p.lanes[p.laneFor(obs.Asset)]

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return models.ErrQueueClosed
	}
	select {
	case lane <- obs:
		return nil
	default:
		p.metrics.RecordDropped("market")
		p.logger.Debug("market lane full, dropping observation",
			applogger.String("asset", obs.Asset.Symbol))
		return models.ErrQueueFull
	}
}

// SubmitText validates, tags and enqueues a text event.
func (p *PipelineRouter) SubmitText(ctx context.Context, ev models.TextEvent) error {
	ev.Text = strings.TrimSpace(ev.Text)
	if err := validate.Check(&ev); err != nil {
		p.metrics.RecordError("router_validate")
		return fmt.Errorf("%w: %w", models.ErrInvalidEvent, err)
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = p.newID()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = p.now()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return models.ErrQueueClosed
	}
	select {
	case p.textCh <- ev:
		return nil
	default:
		p.metrics.RecordDropped("text")
		p.logger.Debug("text queue full, dropping event",
			applogger.String("source", ev.Source),
			applogger.String("correlation_id", ev.CorrelationID))
		return models.ErrQueueFull
	}
}

// Depth returns the number of queued market and text events.
func (p *PipelineRouter) Depth() (market, text int) {
	for _, lane := range p.lanes {
		market += len(lane)
	}
	return market, len(p.textCh)
}

func (p *PipelineRouter) laneFor(asset models.Asset) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(asset.Key()))
	return int(h.Sum32() % uint32(len(p.lanes)))
}

func (p *PipelineRouter) runLane(ctx context.Context, idx int, lane <-chan models.PriceObservation) {
	defer p.wg.Done()
	for obs := range lane {
		start := time.Now()
		if err := p.market.Update(ctx, obs); err != nil {
			p.metrics.RecordError("router_market")
			p.logger.Debug("market update rejected",
				applogger.Int("lane", idx),
				applogger.String("asset", obs.Asset.Symbol),
				applogger.Error(err))
			continue
		}
		p.metrics.RecordLatency("router_market", time.Since(start).Seconds())
	}
}

func (p *PipelineRouter) runText(ctx context.Context) {
	defer p.wg.Done()
	for ev := range p.textCh {
		start := time.Now()
		var wg sync.WaitGroup
		for _, sink := range p.text {
			wg.Add(1)
			go func(s TextSink) {
				defer wg.Done()
				s.HandleTextEvent(ctx, ev)
			}(sink)
		}
		wg.Wait()
		p.metrics.RecordLatency("router_text", time.Since(start).Seconds())
	}
}
