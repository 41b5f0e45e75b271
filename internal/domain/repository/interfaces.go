package repository

import (
	"context"

	"TradePulse/internal/domain/models"
)

// MarketStream is a venue price feed for one asset class.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, symbols ...string) error
	Read(ctx context.Context) (<-chan *models.PriceObservation, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// CryptoListing enumerates tradable crypto pairs as BASE/USD symbols.
type CryptoListing interface {
	KnownCryptoPairs(ctx context.Context) ([]string, error)
}

// StockListing enumerates active tradable stock tickers.
type StockListing interface {
	KnownStockTickers(ctx context.Context) ([]string, error)
}

// VenueListing is the bootstrap source for the discovery registries.
type VenueListing interface {
	CryptoListing
	StockListing
}

// SubscriptionRegistry starts market data for an asset. Subscribe is idempotent
// and reports whether the asset is subscribed after the call.
type SubscriptionRegistry interface {
	Subscribe(ctx context.Context, asset models.Asset) (bool, error)
	IsSubscribed(asset models.Asset) bool
}

// OrderDispatcher hands an order intent to an execution venue.
type OrderDispatcher interface {
	Submit(ctx context.Context, intent models.OrderIntent) error
}

// AuditSink persists decision traces. Failures never affect decisions.
type AuditSink interface {
	Record(ctx context.Context, rec models.AuditRecord) error
}

// SnapshotSink persists indicator snapshots. Failures never affect updates.
type SnapshotSink interface {
	RecordSnapshot(ctx context.Context, snap models.IndicatorSnapshot) error
}

// WatchlistStore persists the monitored set across restarts.
type WatchlistStore interface {
	Add(ctx context.Context, asset models.Asset) error
	List(ctx context.Context, class models.AssetClass) ([]models.Asset, error)
}

// Metrics records pipeline telemetry.
type Metrics interface {
	RecordMessageSent(backend, symbol string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordDropped(stage string)
	RecordDecision(outcome, class string)
	RecordPromotion(class string)
}

// FillRecorder persists executed trades.
type FillRecorder interface {
	RecordFill(ctx context.Context, fill models.Fill) error
}
