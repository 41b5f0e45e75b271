package usecase

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/services/features"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/util"

	"github.com/moznion/go-optional"
)

// IndicatorConfig sets history bounds and indicator periods.
type IndicatorConfig struct {
	HistorySize      int
	MinHistory       int // snapshots exist only once history is strictly longer
	RSIPeriod        int
	SMAShort         int
	SMALong          int
	BollingerPeriod  int
	BollingerK       float64
	VolatilityWindow int
}

// DefaultIndicatorConfig returns RSI-14, SMA-20/50, Bollinger 20/2 and
// 20-sample volatility over a 200-sample history.
func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		HistorySize:      200,
		MinHistory:       50,
		RSIPeriod:        14,
		SMAShort:         20,
		SMALong:          50,
		BollingerPeriod:  20,
		BollingerK:       2,
		VolatilityWindow: 20,
	}
}

// IndicatorOption configures IndicatorEngine.
type IndicatorOption func(*IndicatorEngine)

// WithIndicatorConfig overrides the default periods.
func WithIndicatorConfig(cfg IndicatorConfig) IndicatorOption {
	return func(e *IndicatorEngine) { e.cfg = cfg }
}

// WithSnapshotSink receives every new snapshot. The sink must not block.
func WithSnapshotSink(sink drepo.SnapshotSink) IndicatorOption {
	return func(e *IndicatorEngine) { e.sink = sink }
}

// WithIndicatorLogger sets the logger.
func WithIndicatorLogger(l *applogger.Logger) IndicatorOption {
	return func(e *IndicatorEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIndicatorClock overrides time.Now (useful for testing).
func WithIndicatorClock(now func() time.Time) IndicatorOption {
	return func(e *IndicatorEngine) { e.now = now }
}

// IndicatorEngine keeps a bounded price history per asset and publishes
// derived indicator snapshots. Each asset is guarded by its own lock;
// readers never wait for an update.
type IndicatorEngine struct {
	cfg     IndicatorConfig
	metrics drepo.Metrics
	logger  *applogger.Logger
	sink    drepo.SnapshotSink
	now     func() time.Time

	mu     sync.RWMutex
	series map[string]*priceSeries
}

type priceSeries struct {
	mu       sync.Mutex
	prices   *util.Ring[float64]
	last     atomic.Pointer[models.PriceObservation]
	snapshot atomic.Pointer[models.IndicatorSnapshot]
}

// NewIndicatorEngine creates an engine with no history.
func NewIndicatorEngine(metrics drepo.Metrics, opts ...IndicatorOption) *IndicatorEngine {
	e := &IndicatorEngine{
		cfg:     DefaultIndicatorConfig(),
		metrics: metrics,
		logger:  applogger.Nop(),
		now:     time.Now,
		series:  make(map[string]*priceSeries),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Update appends a validated observation and recomputes the snapshot once the
// history is long enough. Invalid observations leave all state untouched.
func (e *IndicatorEngine) Update(ctx context.Context, obs models.PriceObservation) error {
	if err := obs.Validate(); err != nil {
		e.metrics.RecordError("indicator_invalid_observation")
		return err
	}
	start := time.Now()

	s := e.seriesFor(obs.Asset)

	var snap *models.IndicatorSnapshot
	s.mu.Lock()
	s.prices.Push(obs.Price)
	o := obs
	s.last.Store(&o)
	if s.prices.Len() > e.cfg.MinHistory {
		snap = e.compute(obs.Asset, s.prices.Values())
		s.snapshot.Store(snap)
	}
	s.mu.Unlock()

	e.metrics.RecordLastPrice(obs.Asset.Symbol, obs.Price)
	e.metrics.RecordLatency("indicator_update", time.Since(start).Seconds())

	if snap != nil && e.sink != nil {
		if err := e.sink.RecordSnapshot(ctx, *snap); err != nil {
			e.metrics.RecordError("snapshot_sink")
			e.logger.Debug("snapshot not persisted",
				applogger.String("asset", obs.Asset.Symbol),
				applogger.Error(err))
		}
	}
	return nil
}

// GetSnapshot returns a copy of the latest snapshot, or false while the
// asset has insufficient history.
func (e *IndicatorEngine) GetSnapshot(asset models.Asset) (models.IndicatorSnapshot, bool) {
	s := e.lookup(asset)
	if s == nil {
		return models.IndicatorSnapshot{}, false
	}
	snap := s.snapshot.Load()
	if snap == nil {
		return models.IndicatorSnapshot{}, false
	}
	return *snap, true
}

// Snapshot is GetSnapshot with ErrInsufficientHistory instead of a flag.
func (e *IndicatorEngine) Snapshot(asset models.Asset) (models.IndicatorSnapshot, error) {
	snap, ok := e.GetSnapshot(asset)
	if !ok {
		return snap, &models.DecisionError{
			Code:   models.CodeInsufficientHistory,
			Reason: asset.Symbol,
			Err:    models.ErrInsufficientHistory,
		}
	}
	return snap, nil
}

// LatestPrice returns the most recent accepted price for asset.
func (e *IndicatorEngine) LatestPrice(asset models.Asset) (float64, bool) {
	s := e.lookup(asset)
	if s == nil {
		return 0, false
	}
	last := s.last.Load()
	if last == nil {
		return 0, false
	}
	return last.Price, true
}

// HistoryLen returns how many prices are retained for asset.
func (e *IndicatorEngine) HistoryLen(asset models.Asset) int {
	s := e.lookup(asset)
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prices.Len()
}

// Assets lists every asset that has at least one observation, sorted by key.
func (e *IndicatorEngine) Assets() []models.Asset {
	e.mu.RLock()
	out := make([]models.Asset, 0, len(e.series))
	for _, s := range e.series {
		if last := s.last.Load(); last != nil {
			out = append(out, last.Asset)
		}
	}
	e.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func (e *IndicatorEngine) lookup(asset models.Asset) *priceSeries {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.series[asset.Key()]
}

func (e *IndicatorEngine) seriesFor(asset models.Asset) *priceSeries {
	key := asset.Key()
	e.mu.RLock()
	s, ok := e.series[key]
	e.mu.RUnlock()
	if ok {
		return s
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if s, ok = e.series[key]; ok {
		return s
	}
	s = &priceSeries{prices: util.NewRing[float64](e.cfg.HistorySize)}
	e.series[key] = s
	return s
}

func (e *IndicatorEngine) compute(asset models.Asset, closes []float64) *models.IndicatorSnapshot {
	snap := &models.IndicatorSnapshot{
		Asset:      asset,
		LastPrice:  closes[len(closes)-1],
		Samples:    len(closes),
		ComputedAt: e.now(),
	}
	snap.RSI = optionOf(features.RSI(closes, e.cfg.RSIPeriod))
	snap.SMAShort = optionOf(features.SMA(closes, e.cfg.SMAShort))
	snap.SMALong = optionOf(features.SMA(closes, e.cfg.SMALong))
	if upper, lower, ok := features.Bollinger(closes, e.cfg.BollingerPeriod, e.cfg.BollingerK); ok {
		snap.BollingerUpper = optional.Some(upper)
		snap.BollingerLower = optional.Some(lower)
	}
	snap.Volatility = optionOf(features.Volatility(closes, e.cfg.VolatilityWindow))
	return snap
}

func optionOf(v float64, ok bool) optional.Option[float64] {
	if !ok {
		return optional.None[float64]()
	}
	return optional.Some(v)
}
