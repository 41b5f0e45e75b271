package orderqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/mocks"
	"TradePulse/pkg/queue"
)

type memPublisher struct {
	msgs []json.RawMessage
	err  error
}

func (p *memPublisher) Enqueue(_ context.Context, msgType string, payload interface{}) error {
	if p.err != nil {
		return p.err
	}
	if msgType != JobType {
		return errors.New("unexpected type")
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.msgs = append(p.msgs, b)
	return nil
}

var intent = models.OrderIntent{
	ID:             "intent-1",
	Asset:          models.NewStockAsset("AAPL"),
	Side:           models.OrderSideBuy,
	Quantity:       0.2,
	ReferencePrice: 100,
}

func TestRoundTripThroughQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	venue := mocks.NewMockOrderDispatcher(ctrl)
	pub := &memPublisher{}
	metrics := mocks.NewMetrics()

	require.NoError(t, NewDispatcher(pub).Submit(context.Background(), intent))
	require.Len(t, pub.msgs, 1)

	venue.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, got models.OrderIntent) error {
		assert.Equal(t, intent.ID, got.ID)
		assert.Equal(t, intent.Asset, got.Asset)
		assert.Equal(t, 0.2, got.Quantity)
		return nil
	})
	job := NewJob(map[models.AssetClass]drepo.OrderDispatcher{models.AssetClassStock: venue}, metrics, nil)
	assert.NoError(t, job.Handle(context.Background(), pub.msgs[0]))
}

func TestDispatcherEnqueueFailure(t *testing.T) {
	err := NewDispatcher(&memPublisher{err: errors.New("redis down")}).Submit(context.Background(), intent)
	assert.ErrorContains(t, err, "redis down")
}

func TestJobFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	venue := mocks.NewMockOrderDispatcher(ctrl)
	metrics := mocks.NewMetrics()
	job := NewJob(map[models.AssetClass]drepo.OrderDispatcher{models.AssetClassStock: venue}, metrics, nil)
	ctx := context.Background()

	err := job.Handle(ctx, json.RawMessage(`{`))
	assert.ErrorIs(t, err, queue.ErrPermanent)

	crypto, _ := json.Marshal(models.OrderIntent{Asset: models.NewCryptoAsset("BTC/USD")})
	err = job.Handle(ctx, crypto)
	assert.ErrorIs(t, err, queue.ErrPermanent)

	venue.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(errors.New("rate limited"))
	stock, _ := json.Marshal(intent)
	err = job.Handle(ctx, stock)
	require.Error(t, err)
	assert.False(t, errors.Is(err, queue.ErrPermanent))
	assert.Equal(t, 1, metrics.Errors("order_venue"))
}
