package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

// SubscriptionManager is the monitored set of one asset class. It subscribes
// the class's market stream and persists the set so it survives restarts.
type SubscriptionManager struct {
	class   models.AssetClass
	stream  drepo.MarketStream
	store   drepo.WatchlistStore
	metrics drepo.Metrics
	logger  *applogger.Logger

	mu     sync.RWMutex
	assets map[string]models.Asset
}

// NewSubscriptionManager creates an empty monitored set. store may be nil.
func NewSubscriptionManager(class models.AssetClass, stream drepo.MarketStream, store drepo.WatchlistStore, metrics drepo.Metrics, logger *applogger.Logger) *SubscriptionManager {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &SubscriptionManager{
		class:   class,
		stream:  stream,
		store:   store,
		metrics: metrics,
		logger:  logger,
		assets:  make(map[string]models.Asset),
	}
}

// Subscribe adds asset to the stream subscription. It is idempotent and
// reports whether the asset is subscribed after the call.
func (m *SubscriptionManager) Subscribe(ctx context.Context, asset models.Asset) (bool, error) {
	if asset.Class != m.class {
		return false, fmt.Errorf("subscription manager for %s cannot take %s", m.class, asset)
	}
	if m.IsSubscribed(asset) {
		return true, nil
	}

	if err := m.stream.Subscribe(ctx, asset.Symbol); err != nil {
		m.metrics.RecordError("subscribe")
		return false, fmt.Errorf("subscribe %s: %w", asset.Symbol, err)
	}

	m.mu.Lock()
	m.assets[asset.Key()] = asset
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Add(ctx, asset); err != nil {
			m.metrics.RecordError("watchlist_store")
			m.logger.Warn("watchlist not persisted",
				applogger.String("asset", asset.Symbol),
				applogger.Error(err))
		}
	}
	m.logger.Info("subscribed", applogger.String("asset", asset.Symbol))
	return true, nil
}

// IsSubscribed reports whether asset is in the monitored set.
func (m *SubscriptionManager) IsSubscribed(asset models.Asset) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.assets[asset.Key()]
	return ok
}

// Assets returns the monitored set sorted by symbol.
func (m *SubscriptionManager) Assets() []models.Asset {
	m.mu.RLock()
	out := make([]models.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		out = append(out, a)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Symbols returns the monitored symbols, used to resubscribe after a reconnect.
func (m *SubscriptionManager) Symbols() []string {
	assets := m.Assets()
	out := make([]string, len(assets))
	for i, a := range assets {
		out[i] = a.Symbol
	}
	return out
}

// Seed subscribes the configured and persisted assets and hands each one to
// watch. Individual failures are logged and skipped.
func (m *SubscriptionManager) Seed(ctx context.Context, configured []models.Asset, watch AssetWatcher) int {
	seed := configured
	if m.store != nil {
		stored, err := m.store.List(ctx, m.class)
		if err != nil {
			m.metrics.RecordError("watchlist_store")
			m.logger.Warn("watchlist restore failed", applogger.Error(err))
		} else {
			seed = append(append([]models.Asset(nil), configured...), stored...)
		}
	}

	n := 0
	for _, a := range seed {
		if a.Class != m.class {
			continue
		}
		ok, err := m.Subscribe(ctx, a)
		if err != nil || !ok {
			m.logger.Warn("seed subscription failed",
				applogger.String("asset", a.Symbol),
				applogger.Error(err))
			continue
		}
		if watch != nil {
			watch.WatchAsset(a)
		}
		n++
	}
	return n
}

var _ drepo.SubscriptionRegistry = (*SubscriptionManager)(nil)
