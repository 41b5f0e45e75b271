package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	dservice "TradePulse/internal/domain/service"
	applogger "TradePulse/pkg/logger"
)

// AssetWatcher adds a promoted asset to the decision keyword maps.
type AssetWatcher interface {
	WatchAsset(asset models.Asset) bool
}

// DiscoveryConfig tunes promotion and the venue bootstrap.
type DiscoveryConfig struct {
	Lookback          time.Duration
	Threshold         int
	BootstrapAttempts int
	BootstrapBackoff  time.Duration
}

// DefaultDiscoveryConfig promotes at 10 mentions within 5 minutes.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Lookback:          300 * time.Second,
		Threshold:         10,
		BootstrapAttempts: 3,
		BootstrapBackoff:  2 * time.Second,
	}
}

// DiscoveryOption configures AssetDiscoverer.
type DiscoveryOption func(*AssetDiscoverer)

// WithSubscriptions sets the registry used to monitor assets of class.
func WithSubscriptions(class models.AssetClass, reg drepo.SubscriptionRegistry) DiscoveryOption {
	return func(d *AssetDiscoverer) { d.subscriptions[class] = reg }
}

// WithDiscoveryConfig overrides the defaults.
func WithDiscoveryConfig(cfg DiscoveryConfig) DiscoveryOption {
	return func(d *AssetDiscoverer) { d.cfg = cfg }
}

// WithDiscoveryLogger sets the logger.
func WithDiscoveryLogger(l *applogger.Logger) DiscoveryOption {
	return func(d *AssetDiscoverer) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDiscoveryClock overrides time.Now (useful for testing).
func WithDiscoveryClock(now func() time.Time) DiscoveryOption {
	return func(d *AssetDiscoverer) { d.now = now }
}

// AssetDiscoverer promotes tickers that are mentioned often enough into the
// monitored set.
type AssetDiscoverer struct {
	extractor     dservice.TickerExtractor
	listing       drepo.VenueListing
	watcher       AssetWatcher
	subscriptions map[models.AssetClass]drepo.SubscriptionRegistry
	metrics       drepo.Metrics
	logger        *applogger.Logger
	now           func() time.Time
	cfg           DiscoveryConfig
	mentions      *MentionTracker

	mu           sync.RWMutex
	cryptoPairs  map[string]struct{}
	stockTickers map[string]struct{}
}

// NewAssetDiscoverer creates a discoverer. Bootstrap must succeed before
// candidates can be classified.
func NewAssetDiscoverer(
	extractor dservice.TickerExtractor,
	listing drepo.VenueListing,
	watcher AssetWatcher,
	metrics drepo.Metrics,
	opts ...DiscoveryOption,
) *AssetDiscoverer {
	d := &AssetDiscoverer{
		extractor:     extractor,
		listing:       listing,
		watcher:       watcher,
		subscriptions: make(map[models.AssetClass]drepo.SubscriptionRegistry),
		metrics:       metrics,
		logger:        applogger.Nop(),
		now:           time.Now,
		cfg:           DefaultDiscoveryConfig(),
		cryptoPairs:   make(map[string]struct{}),
		stockTickers:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.cfg.BootstrapAttempts <= 0 {
		d.cfg.BootstrapAttempts = 1
	}
	d.mentions = NewMentionTracker(d.cfg.Lookback, d.cfg.Threshold)
	return d
}

// Bootstrap loads the crypto and stock registries from the venues, retrying
// with linear backoff. Exhausting the attempts is a startup failure.
func (d *AssetDiscoverer) Bootstrap(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= d.cfg.BootstrapAttempts; attempt++ {
		if lastErr = d.loadRegistries(ctx); lastErr == nil {
			return nil
		}
		d.metrics.RecordError("venue_bootstrap")
		d.logger.Warn("venue listing failed",
			applogger.Int("attempt", attempt),
			applogger.Error(lastErr))

		if attempt == d.cfg.BootstrapAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("venue bootstrap: %w", ctx.Err())
		case <-time.After(time.Duration(attempt) * d.cfg.BootstrapBackoff):
		}
	}
	return fmt.Errorf("venue bootstrap failed after %d attempts: %w", d.cfg.BootstrapAttempts, lastErr)
}

func (d *AssetDiscoverer) loadRegistries(ctx context.Context) error {
	pairs, err := d.listing.KnownCryptoPairs(ctx)
	if err != nil {
		return fmt.Errorf("crypto listing: %w", err)
	}
	tickers, err := d.listing.KnownStockTickers(ctx)
	if err != nil {
		return fmt.Errorf("stock listing: %w", err)
	}

	crypto := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		crypto[strings.ToUpper(p)] = struct{}{}
	}
	stocks := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		stocks[strings.ToUpper(t)] = struct{}{}
	}

	d.mu.Lock()
	d.cryptoPairs = crypto
	d.stockTickers = stocks
	d.mu.Unlock()

	d.logger.Info("venue registries loaded",
		applogger.Int("crypto_pairs", len(crypto)),
		applogger.Int("stock_tickers", len(stocks)))
	return nil
}

// Classify maps a raw candidate to a known asset. Stocks are checked first,
// then the candidate's USD crypto pair.
func (d *AssetDiscoverer) Classify(candidate string) (models.Asset, bool) {
	t := normalizeTicker(candidate)
	if t == "" {
		return models.Asset{}, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if _, ok := d.stockTickers[t]; ok {
		return models.NewStockAsset(t), true
	}
	if _, ok := d.cryptoPairs[models.CryptoPairFor(t)]; ok {
		return models.NewCryptoAsset(models.CryptoPairFor(t)), true
	}
	return models.Asset{}, false
}

// HandleTextEvent adapts HandleText to the router's text sink.
func (d *AssetDiscoverer) HandleTextEvent(ctx context.Context, ev models.TextEvent) {
	d.HandleText(ctx, ev.Text)
}

// HandleText counts the tickers mentioned in text and returns the assets it
// promoted. Extractor failures are logged and treated as no candidates.
func (d *AssetDiscoverer) HandleText(ctx context.Context, text string) []models.Asset {
	candidates, err := d.extractor.Extract(ctx, text)
	if err != nil {
		d.metrics.RecordError("ticker_extractor")
		d.logger.Warn("ticker extraction failed", applogger.Error(err))
		return nil
	}

	var promoted []models.Asset
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		ticker := normalizeTicker(c)
		if _, dup := seen[ticker]; dup || ticker == "" {
			continue
		}
		seen[ticker] = struct{}{}

		asset, ok := d.Classify(ticker)
		if !ok {
			continue
		}
		reg, ok := d.subscriptions[asset.Class]
		if !ok {
			d.logger.Debug("no subscription registry",
				applogger.String("class", asset.Class.String()))
			continue
		}
		if reg.IsSubscribed(asset) {
			continue
		}

		count, claimed := d.mentions.Record(ticker, d.now())
		d.logger.Debug("mention recorded",
			applogger.String("ticker", ticker),
			applogger.Int("count", count))
		if !claimed {
			continue
		}
		if d.promote(ctx, ticker, asset, reg, count) {
			promoted = append(promoted, asset)
		}
	}
	return promoted
}

// MentionCount returns the live mention count of a ticker.
func (d *AssetDiscoverer) MentionCount(ticker string) int {
	return d.mentions.Count(normalizeTicker(ticker), d.now())
}

func (d *AssetDiscoverer) promote(ctx context.Context, ticker string, asset models.Asset, reg drepo.SubscriptionRegistry, count int) bool {
	// a concurrent promotion may have finished since the first check
	if reg.IsSubscribed(asset) {
		d.mentions.Complete(ticker)
		return false
	}
	ok, err := reg.Subscribe(ctx, asset)
	if err != nil || !ok {
		d.mentions.Release(ticker)
		d.metrics.RecordError("discovery_subscribe")
		d.logger.Warn("subscription failed, promotion deferred",
			applogger.String("asset", asset.Symbol),
			applogger.Int("mentions", count),
			applogger.Error(err))
		return false
	}

	d.watcher.WatchAsset(asset)
	d.mentions.Complete(ticker)
	d.metrics.RecordPromotion(asset.Class.String())
	d.logger.Info("asset promoted",
		applogger.String("asset", asset.Symbol),
		applogger.String("class", asset.Class.String()),
		applogger.Int("mentions", count))
	return true
}

func normalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "$"))
}
