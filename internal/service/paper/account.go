package paper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

var (
	ErrInsufficientCash = errors.New("insufficient cash")
	ErrNoPosition       = errors.New("no position to sell")
)

// DefaultCash is the starting balance of a new account.
const DefaultCash = 10000.0

// Option configures Account.
type Option func(*Account)

// WithCash sets the starting balance.
func WithCash(cash float64) Option {
	return func(a *Account) {
		if cash > 0 {
			a.cash = cash
		}
	}
}

// WithFillRecorder persists every fill. Recorder failures are logged.
func WithFillRecorder(r drepo.FillRecorder) Option {
	return func(a *Account) { a.fills = r }
}

// WithLogger sets the logger.
func WithLogger(l *applogger.Logger) Option {
	return func(a *Account) {
		if l != nil {
			a.logger = l
		}
	}
}

// Account simulates execution at the intent's reference price. A buy needs
// enough cash; a sell liquidates the whole position.
type Account struct {
	fills  drepo.FillRecorder
	logger *applogger.Logger
	now    func() time.Time

	mu        sync.Mutex
	cash      float64
	positions map[string]float64
}

// NewAccount creates a paper account.
func NewAccount(opts ...Option) *Account {
	a := &Account{
		logger:    applogger.Nop(),
		now:       time.Now,
		cash:      DefaultCash,
		positions: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Submit fills the intent or returns why it cannot.
func (a *Account) Submit(ctx context.Context, intent models.OrderIntent) error {
	price := intent.ReferencePrice
	if price <= 0 || intent.Quantity <= 0 {
		return fmt.Errorf("paper order for %s: quantity %v at price %v", intent.Asset, intent.Quantity, price)
	}

	key := intent.Asset.Key()
	a.mu.Lock()
	var fill models.Fill
	switch intent.Side {
	case models.OrderSideBuy:
		cost := intent.Quantity * price
		if a.cash < cost {
			cash := a.cash
			a.mu.Unlock()
			return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, cost, cash)
		}
		a.cash -= cost
		a.positions[key] += intent.Quantity
		fill = a.fillLocked(intent, intent.Quantity, price)
	case models.OrderSideSell:
		held := a.positions[key]
		if held <= 0 {
			a.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrNoPosition, intent.Asset)
		}
		a.cash += held * price
		delete(a.positions, key)
		fill = a.fillLocked(intent, held, price)
	default:
		a.mu.Unlock()
		return fmt.Errorf("paper order side %q unsupported", intent.Side)
	}
	cash := a.cash
	a.mu.Unlock()

	a.logger.Info("paper fill",
		applogger.String("asset", intent.Asset.Symbol),
		applogger.String("side", string(fill.Side)),
		applogger.Float64("qty", fill.Quantity),
		applogger.Float64("price", price),
		applogger.Float64("cash", cash))

	if a.fills != nil {
		if err := a.fills.RecordFill(ctx, fill); err != nil {
			a.logger.Warn("fill not recorded", applogger.Error(err))
		}
	}
	return nil
}

func (a *Account) fillLocked(intent models.OrderIntent, qty, price float64) models.Fill {
	return models.Fill{
		IntentID: intent.ID,
		Asset:    intent.Asset,
		Side:     intent.Side,
		Quantity: qty,
		Price:    price,
		Notional: qty * price,
		Venue:    "paper",
		FilledAt: a.now(),
	}
}

// Cash returns the current balance.
func (a *Account) Cash() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cash
}

// Position returns the held quantity of asset.
func (a *Account) Position(asset models.Asset) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[asset.Key()]
}

var _ drepo.OrderDispatcher = (*Account)(nil)
