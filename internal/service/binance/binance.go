package binance

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adshao/go-binance/v2"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

// DefaultQuote is the stablecoin standing in for USD.
const DefaultQuote = "USDT"

// Option configures Venue.
type Option func(*Venue)

// WithQuote sets the quote asset mapped to USD pairs.
func WithQuote(q string) Option {
	return func(v *Venue) {
		if q != "" {
			v.quote = strings.ToUpper(q)
		}
	}
}

// WithBaseURL overrides the REST endpoint.
func WithBaseURL(u string) Option {
	return func(v *Venue) {
		if u != "" {
			v.client.BaseURL = u
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(v *Venue) {
		if l != nil {
			v.logger = l
		}
	}
}

// Venue lists spot pairs and places market orders on Binance. BASE/USD
// pairs map to BASE+quote symbols.
type Venue struct {
	client *binance.Client
	quote  string
	logger *applogger.Logger
}

// New creates a venue with API credentials. Listing works without them.
func New(apiKey, secret string, opts ...Option) *Venue {
	v := &Venue{
		client: binance.NewClient(apiKey, secret),
		quote:  DefaultQuote,
		logger: applogger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// KnownCryptoPairs lists trading spot symbols quoted in the configured quote
// as BASE/USD.
func (v *Venue) KnownCryptoPairs(ctx context.Context) ([]string, error) {
	info, err := v.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance exchange info: %w", err)
	}
	pairs := make([]string, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != "TRADING" || !strings.EqualFold(s.QuoteAsset, v.quote) {
			continue
		}
		pairs = append(pairs, models.CryptoPairFor(s.BaseAsset))
	}
	sort.Strings(pairs)
	return pairs, nil
}

// Symbol maps BTC/USD to BTCUSDT.
func (v *Venue) Symbol(asset models.Asset) string {
	return asset.Base() + v.quote
}

// Submit places a market order.
func (v *Venue) Submit(ctx context.Context, intent models.OrderIntent) error {
	if intent.Asset.Class != models.AssetClassCrypto {
		return fmt.Errorf("binance cannot trade %s asset %s", intent.Asset.Class, intent.Asset)
	}
	qty := intent.QuantityDecimal(8)
	if !qty.IsPositive() {
		return fmt.Errorf("binance order quantity %s not positive", qty)
	}
	side := binance.SideTypeBuy
	if intent.Side == models.OrderSideSell {
		side = binance.SideTypeSell
	}

	svc := v.client.NewCreateOrderService().
		Symbol(v.Symbol(intent.Asset)).
		Side(side).
		Type(binance.OrderTypeMarket).
		Quantity(qty.String())
	if intent.ID != "" {
		svc = svc.NewClientOrderID(intent.ID)
	}
	resp, err := svc.Do(ctx)
	if err != nil {
		return fmt.Errorf("binance create order %s: %w", intent.Asset.Symbol, err)
	}
	v.logger.Info("binance order placed",
		applogger.String("symbol", resp.Symbol),
		applogger.Int64("order_id", resp.OrderID),
		applogger.String("status", string(resp.Status)))
	return nil
}

var (
	_ drepo.CryptoListing   = (*Venue)(nil)
	_ drepo.OrderDispatcher = (*Venue)(nil)
)
