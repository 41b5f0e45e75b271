package usecase

import (
	"context"
	"errors"
	"testing"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSubscriptionManagerSubscribeIsIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockMarketStream(ctrl)
	store := mocks.NewMockWatchlistStore(ctrl)
	gme := models.NewStockAsset("GME")

	stream.EXPECT().Subscribe(gomock.Any(), "GME").Return(nil).Times(1)
	store.EXPECT().Add(gomock.Any(), gme).Return(nil).Times(1)

	m := NewSubscriptionManager(models.AssetClassStock, stream, store, mocks.NewMetrics(), nil)
	for i := 0; i < 3; i++ {
		ok, err := m.Subscribe(context.Background(), gme)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.True(t, m.IsSubscribed(gme))
	assert.Equal(t, []string{"GME"}, m.Symbols())
}

func TestSubscriptionManagerStreamFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockMarketStream(ctrl)
	stream.EXPECT().Subscribe(gomock.Any(), "BTC/USD").Return(errors.New("not connected"))

	metrics := mocks.NewMetrics()
	m := NewSubscriptionManager(models.AssetClassCrypto, stream, nil, metrics, nil)
	ok, err := m.Subscribe(context.Background(), models.NewCryptoAsset("BTC/USD"))

	assert.Error(t, err)
	assert.False(t, ok)
	assert.False(t, m.IsSubscribed(models.NewCryptoAsset("BTC/USD")))
	assert.Equal(t, 1, metrics.Errors("subscribe"))
}

func TestSubscriptionManagerRejectsOtherClass(t *testing.T) {
	m := NewSubscriptionManager(models.AssetClassCrypto, nil, nil, mocks.NewMetrics(), nil)
	_, err := m.Subscribe(context.Background(), models.NewStockAsset("AAPL"))
	assert.Error(t, err)
}

func TestSubscriptionManagerSeedRestoresWatchlist(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockMarketStream(ctrl)
	store := mocks.NewMockWatchlistStore(ctrl)
	btc := models.NewCryptoAsset("BTC/USD")
	pepe := models.NewCryptoAsset("PEPE/USD")

	store.EXPECT().List(gomock.Any(), models.AssetClassCrypto).Return([]models.Asset{pepe, btc}, nil)
	stream.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	store.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	watch := &watchRecorder{}
	m := NewSubscriptionManager(models.AssetClassCrypto, stream, store, mocks.NewMetrics(), nil)
	n := m.Seed(context.Background(), []models.Asset{btc, models.NewStockAsset("AAPL")}, watch)

	assert.Equal(t, 3, n)
	assert.Equal(t, []models.Asset{btc, pepe}, m.Assets())
	assert.Len(t, watch.assets, 3)
}
