package paper

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"
)

var btc = models.NewCryptoAsset("BTC/USD")

func order(side models.OrderSide, qty, price float64) models.OrderIntent {
	return models.OrderIntent{ID: "i", Asset: btc, Side: side, Quantity: qty, ReferencePrice: price}
}

func TestBuyThenSellLiquidates(t *testing.T) {
	a := NewAccount()
	ctx := context.Background()

	require.NoError(t, a.Submit(ctx, order(models.OrderSideBuy, 0.2, 100)))
	require.NoError(t, a.Submit(ctx, order(models.OrderSideBuy, 0.3, 100)))
	assert.InDelta(t, 9950, a.Cash(), 1e-9)
	assert.InDelta(t, 0.5, a.Position(btc), 1e-9)

	require.NoError(t, a.Submit(ctx, order(models.OrderSideSell, 0.1, 120)))
	assert.InDelta(t, 10010, a.Cash(), 1e-9)
	assert.Zero(t, a.Position(btc))
}

func TestRejections(t *testing.T) {
	tests := []struct {
		name   string
		intent models.OrderIntent
		target error
	}{
		{"buy beyond cash", order(models.OrderSideBuy, 2, 10000), ErrInsufficientCash},
		{"sell without position", order(models.OrderSideSell, 1, 100), ErrNoPosition},
		{"zero price", order(models.OrderSideBuy, 1, 0), nil},
		{"unknown side", order("short", 1, 100), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAccount(WithCash(1000))
			err := a.Submit(context.Background(), tt.intent)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Equal(t, 1000.0, a.Cash())
		})
	}
}

func TestFillsRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mocks.NewMockFillRecorder(ctrl)
	a := NewAccount(WithFillRecorder(rec))

	rec.EXPECT().RecordFill(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, f models.Fill) error {
		assert.Equal(t, "paper", f.Venue)
		assert.Equal(t, 20.0, f.Notional)
		return errors.New("db down")
	})
	assert.NoError(t, a.Submit(context.Background(), order(models.OrderSideBuy, 0.2, 100)))
}

func TestConcurrentBuysNeverOverspend(t *testing.T) {
	a := NewAccount(WithCash(1000))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = a.Submit(context.Background(), order(models.OrderSideBuy, 1, 100))
		}()
	}
	wg.Wait()
	assert.InDelta(t, 0, a.Cash(), 1e-9)
	assert.InDelta(t, 10, a.Position(btc), 1e-9)
}

func TestListingNormalizes(t *testing.T) {
	l := Listing{Pairs: []string{"btc/usd", " "}, Tickers: []string{" aapl"}}
	pairs, err := l.KnownCryptoPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USD"}, pairs)

	tickers, err := l.KnownStockTickers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, tickers)
}
