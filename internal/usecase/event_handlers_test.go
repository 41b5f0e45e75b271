package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/middleware"
	"TradePulse/internal/mocks"
	pkgkafka "TradePulse/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureRouter struct {
	text   []models.TextEvent
	market []models.PriceObservation
	err    error
}

func (c *captureRouter) SubmitText(_ context.Context, ev models.TextEvent) error {
	c.text = append(c.text, ev)
	return c.err
}

func (c *captureRouter) ReplayMarket(_ context.Context, obs models.PriceObservation) error {
	c.market = append(c.market, obs)
	return c.err
}

func TestTextEventHandlerUsesTraceID(t *testing.T) {
	r := &captureRouter{}
	h := NewTextEventHandler("text-events", r, mocks.NewMetrics())

	ctx := pkgkafka.WithTraceID(context.Background(), "trace-9")
	require.NoError(t, h.Handle(ctx, []byte(`{"type":"social_post","post_id":"1","text":"$GME squeeze"}`)))

	require.Len(t, r.text, 1)
	assert.Equal(t, "trace-9", r.text[0].CorrelationID)
	assert.Equal(t, "kafka", r.text[0].Source)
	assert.Equal(t, models.TextKindSocialPost, r.text[0].Kind)
}

func TestTextEventHandlerErrors(t *testing.T) {
	m := mocks.NewMetrics()
	h := NewTextEventHandler("text-events", &captureRouter{}, m)
	err := h.Handle(context.Background(), []byte(`{not json`))
	assert.ErrorIs(t, err, models.ErrInvalidEvent)
	assert.Equal(t, 1, m.Errors("consumer_unmarshal"))

	full := NewTextEventHandler("text-events", &captureRouter{err: models.ErrQueueFull}, m)
	assert.NoError(t, full.Handle(context.Background(), []byte(`{"type":"news_post","text":"x"}`)))
}

func TestMarketEventHandlerParsesTimestamps(t *testing.T) {
	r := &captureRouter{}
	h := NewMarketEventHandler("market-events", r, mocks.NewMetrics())

	require.NoError(t, h.Handle(context.Background(), []byte(`{"symbol":"btc/usd","class":"crypto","price":64000.5,"ts":1700000000000}`)))
	require.NoError(t, h.Handle(context.Background(), []byte(`{"symbol":"aapl","class":"stock","price":190,"ts":"2026-01-02T15:00:00Z"}`)))

	require.Len(t, r.market, 2)
	assert.Equal(t, models.NewCryptoAsset("BTC/USD"), r.market[0].Asset)
	assert.Equal(t, time.UnixMilli(1700000000000), r.market[0].ObservedAt)
	assert.Equal(t, models.NewStockAsset("AAPL"), r.market[1].Asset)
	assert.Equal(t, time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC), r.market[1].ObservedAt.UTC())
}

func TestMarketEventHandlerRejectsUnknownClass(t *testing.T) {
	m := mocks.NewMetrics()
	r := &captureRouter{}
	h := NewMarketEventHandler("market-events", r, m)

	for _, body := range []string{
		`{"symbol":"AAPL","price":190}`,
		`{"symbol":"AAPL","class":"forex","price":190}`,
	} {
		assert.ErrorIs(t, h.Handle(context.Background(), []byte(body)), models.ErrInvalidObservation, body)
	}
	assert.Empty(t, r.market)
	assert.Equal(t, 2, m.Errors("consumer_class"))
}

func TestMarketEventHandlerRedeliversOnFullLane(t *testing.T) {
	h := NewMarketEventHandler("market-events", &captureRouter{err: models.ErrQueueFull}, mocks.NewMetrics())
	err := h.Handle(context.Background(), []byte(`{"symbol":"BTC/USD","class":"crypto","price":1}`))
	assert.ErrorIs(t, err, models.ErrQueueFull)
}

type orderedMarket struct {
	prices []float64
}

func (o *orderedMarket) Update(_ context.Context, obs models.PriceObservation) error {
	o.prices = append(o.prices, obs.Price)
	return nil
}

func TestMarketReplayKeepsEveryObservation(t *testing.T) {
	engine := &orderedMarket{}
	router := middleware.NewPipelineRouter(engine, nil, mocks.NewMetrics(),
		middleware.WithMarketLanes(1),
		middleware.WithLaneSize(256),
		middleware.WithMaxRPS(20))
	h := NewMarketEventHandler("market-events", router, mocks.NewMetrics())

	for i := 1; i <= 100; i++ {
		body := fmt.Sprintf(`{"symbol":"ETH/USD","class":"crypto","price":%d,"ts":%d}`, i, 1700000000+i)
		require.NoError(t, h.Handle(context.Background(), []byte(body)))
	}
	router.Start(context.Background())
	require.NoError(t, router.Stop(context.Background()))

	require.Len(t, engine.prices, 100)
	for i, p := range engine.prices {
		assert.Equal(t, float64(i+1), p)
	}
}
