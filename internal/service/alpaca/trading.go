package alpaca

import (
	"context"
	"fmt"
	"sort"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

const (
	PaperURL = "https://paper-api.alpaca.markets"
	LiveURL  = "https://api.alpaca.markets"
)

// TradingAPI is the subset of *alpaca.Client the adapter uses.
type TradingAPI interface {
	GetAssets(req alpaca.GetAssetsRequest) ([]alpaca.Asset, error)
	PlaceOrder(req alpaca.PlaceOrderRequest) (*alpaca.Order, error)
}

// Trader lists tradable US equities and places market orders.
type Trader struct {
	api    TradingAPI
	logger *applogger.Logger
}

// NewClient builds the SDK client for baseURL.
func NewClient(key, secret, baseURL string) *alpaca.Client {
	if baseURL == "" {
		baseURL = PaperURL
	}
	return alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    key,
		APISecret: secret,
		BaseURL:   baseURL,
	})
}

// NewTrader wraps api. logger may be nil.
func NewTrader(api TradingAPI, logger *applogger.Logger) *Trader {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Trader{api: api, logger: logger.With("alpaca")}
}

// KnownStockTickers lists active, tradable us_equity symbols.
func (t *Trader) KnownStockTickers(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	assets, err := t.api.GetAssets(alpaca.GetAssetsRequest{Status: "active", AssetClass: "us_equity"})
	if err != nil {
		return nil, fmt.Errorf("alpaca assets: %w", err)
	}
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		if !a.Tradable || string(a.Status) != "active" {
			continue
		}
		out = append(out, a.Symbol)
	}
	sort.Strings(out)
	return out, nil
}

// Submit places a market order. Fractional quantities require a day order.
func (t *Trader) Submit(ctx context.Context, intent models.OrderIntent) error {
	if intent.Asset.Class != models.AssetClassStock {
		return fmt.Errorf("alpaca cannot trade %s asset %s", intent.Asset.Class, intent.Asset)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	qty := intent.QuantityDecimal(9)
	if !qty.IsPositive() {
		return fmt.Errorf("alpaca order qty %s not positive", qty)
	}

	side := alpaca.Buy
	if intent.Side == models.OrderSideSell {
		side = alpaca.Sell
	}
	order, err := t.api.PlaceOrder(alpaca.PlaceOrderRequest{
		Symbol:        intent.Asset.Symbol,
		Qty:           &qty,
		Side:          side,
		Type:          alpaca.Market,
		TimeInForce:   alpaca.Day,
		ClientOrderID: intent.ID,
	})
	if err != nil {
		return fmt.Errorf("alpaca place order %s: %w", intent.Asset.Symbol, err)
	}
	t.logger.Info("alpaca order placed",
		applogger.String("symbol", intent.Asset.Symbol),
		applogger.String("side", string(intent.Side)),
		applogger.String("qty", qty.String()),
		applogger.String("order_id", order.ID))
	return nil
}

var (
	_ drepo.StockListing    = (*Trader)(nil)
	_ drepo.OrderDispatcher = (*Trader)(nil)
	_ TradingAPI            = (*alpaca.Client)(nil)
)
