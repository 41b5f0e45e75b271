package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
)

// RedisWatchlist keeps one Redis set of symbols per asset class.
type RedisWatchlist struct {
	client redis.Cmdable
	prefix string
}

// NewRedisWatchlist creates a store. Keys are "<prefix>:watchlist:<class>".
func NewRedisWatchlist(client redis.Cmdable, prefix string) *RedisWatchlist {
	if prefix == "" {
		prefix = "tradepulse"
	}
	return &RedisWatchlist{client: client, prefix: prefix}
}

func (w *RedisWatchlist) key(class models.AssetClass) string {
	return w.prefix + ":watchlist:" + class.String()
}

// Add persists asset. Adding a present asset is a no-op.
func (w *RedisWatchlist) Add(ctx context.Context, asset models.Asset) error {
	if !asset.Class.Valid() || asset.IsZero() {
		return fmt.Errorf("watchlist add: invalid asset %q", asset.Key())
	}
	if err := w.client.SAdd(ctx, w.key(asset.Class), asset.Symbol).Err(); err != nil {
		return fmt.Errorf("watchlist add %s: %w", asset.Key(), err)
	}
	return nil
}

// List returns the persisted assets of class sorted by symbol.
func (w *RedisWatchlist) List(ctx context.Context, class models.AssetClass) ([]models.Asset, error) {
	symbols, err := w.client.SMembers(ctx, w.key(class)).Result()
	if err != nil {
		return nil, fmt.Errorf("watchlist list %s: %w", class, err)
	}
	sort.Strings(symbols)
	out := make([]models.Asset, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, models.Asset{Symbol: s, Class: class})
	}
	return out, nil
}

var _ drepo.WatchlistStore = (*RedisWatchlist)(nil)
