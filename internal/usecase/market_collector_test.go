package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingSubmitter struct {
	mu  sync.Mutex
	got []models.PriceObservation
}

func (r *recordingSubmitter) SubmitMarket(_ context.Context, obs models.PriceObservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, obs)
	return nil
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func TestMarketCollectorRoutesObservations(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockMarketStream(ctrl)
	obsCh := make(chan *models.PriceObservation, 2)
	errCh := make(chan error, 1)

	stream.EXPECT().Connect(gomock.Any()).Return(nil)
	stream.EXPECT().Read(gomock.Any()).Return((<-chan *models.PriceObservation)(obsCh), (<-chan error)(errCh))
	stream.EXPECT().Close().Return(nil)

	subs := NewSubscriptionManager(models.AssetClassCrypto, stream, nil, mocks.NewMetrics(), nil)
	router := &recordingSubmitter{}
	c := NewMarketCollector("kraken", stream, subs, router, mocks.NewMetrics(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Start(ctx))

	obsCh <- &models.PriceObservation{Asset: models.NewCryptoAsset("BTC/USD"), Price: 50000, ObservedAt: time.Now()}
	obsCh <- nil

	assert.Eventually(t, func() bool { return router.count() == 1 }, time.Second, 5*time.Millisecond)

	close(obsCh)
	sctx, scancel := context.WithTimeout(context.Background(), time.Second)
	defer scancel()
	assert.NoError(t, c.Shutdown(sctx))
}

func TestMarketCollectorReconnectsAndResubscribes(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockMarketStream(ctrl)
	obsCh := make(chan *models.PriceObservation)
	errCh := make(chan error, 1)
	btc := models.NewCryptoAsset("BTC/USD")

	stream.EXPECT().Subscribe(gomock.Any(), "BTC/USD").Return(nil).Times(1)
	subs := NewSubscriptionManager(models.AssetClassCrypto, stream, nil, mocks.NewMetrics(), nil)
	_, err := subs.Subscribe(context.Background(), btc)
	require.NoError(t, err)

	reconnected := make(chan struct{})
	stream.EXPECT().Connect(gomock.Any()).Return(nil)
	stream.EXPECT().Subscribe(gomock.Any(), "BTC/USD").Return(nil).Times(1)
	stream.EXPECT().Read(gomock.Any()).Return((<-chan *models.PriceObservation)(obsCh), (<-chan error)(errCh))
	gomock.InOrder(
		stream.EXPECT().Reconnect(gomock.Any()).Return(errors.New("dial refused")),
		stream.EXPECT().Reconnect(gomock.Any()).Return(nil),
	)
	stream.EXPECT().Subscribe(gomock.Any(), "BTC/USD").DoAndReturn(func(context.Context, ...string) error {
		close(reconnected)
		return nil
	})
	stream.EXPECT().Close().Return(nil)

	metrics := mocks.NewMetrics()
	c := NewMarketCollector("kraken", stream, subs, &recordingSubmitter{}, metrics, nil)
	c.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	errCh <- errors.New("connection reset")

	select {
	case <-reconnected:
	case <-time.After(time.Second):
		t.Fatal("collector did not resubscribe after reconnect")
	}
	assert.Equal(t, 1, metrics.Errors("stream_kraken"))
	assert.Equal(t, 1, metrics.Errors("stream_reconnect_kraken"))

	cancel()
	sctx, scancel := context.WithTimeout(context.Background(), time.Second)
	defer scancel()
	assert.NoError(t, c.Shutdown(sctx))
}

func TestMarketCollectorConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockMarketStream(ctrl)
	stream.EXPECT().Connect(gomock.Any()).Return(errors.New("dial refused"))
	stream.EXPECT().Close().Return(nil)

	subs := NewSubscriptionManager(models.AssetClassStock, stream, nil, mocks.NewMetrics(), nil)
	c := NewMarketCollector("alpaca", stream, subs, &recordingSubmitter{}, mocks.NewMetrics(), nil)

	assert.Error(t, c.Start(context.Background()))

	// never started, so shutdown must not wait for the reader
	start := time.Now()
	assert.NoError(t, c.Shutdown(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestMarketCollectorIsConnected(t *testing.T) {
	ctrl := gomock.NewController(t)
	stream := mocks.NewMockMarketStream(ctrl)
	stream.EXPECT().IsConnected().Return(true)

	c := NewMarketCollector("kraken", stream, nil, &recordingSubmitter{}, mocks.NewMetrics(), nil)
	assert.True(t, c.IsConnected())
	assert.Equal(t, "kraken", c.Name())
}
