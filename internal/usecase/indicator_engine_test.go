package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var t0 = time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

func feed(t *testing.T, e *IndicatorEngine, asset models.Asset, prices []float64) {
	t.Helper()
	for i, p := range prices {
		obs := models.PriceObservation{Asset: asset, Price: p, ObservedAt: t0.Add(time.Duration(i) * time.Second)}
		require.NoError(t, e.Update(context.Background(), obs))
	}
}

func wave(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 5*math.Sin(float64(i)/3)
	}
	return out
}

func mean(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func TestIndicatorEngineNeedsMoreThanMinHistory(t *testing.T) {
	e := NewIndicatorEngine(mocks.NewMetrics())
	btc := models.NewCryptoAsset("BTC/USD")

	feed(t, e, btc, wave(50))
	_, ok := e.GetSnapshot(btc)
	assert.False(t, ok)
	_, err := e.Snapshot(btc)
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)

	feed(t, e, btc, []float64{101})
	snap, ok := e.GetSnapshot(btc)
	require.True(t, ok)
	assert.Equal(t, 51, snap.Samples)
	assert.Equal(t, 101.0, snap.LastPrice)
}

func TestIndicatorEngineSnapshotValues(t *testing.T) {
	e := NewIndicatorEngine(mocks.NewMetrics())
	eth := models.NewCryptoAsset("ETH/USD")
	prices := wave(80)
	feed(t, e, eth, prices)

	snap, ok := e.GetSnapshot(eth)
	require.True(t, ok)

	require.True(t, snap.RSI.IsSome())
	rsi := snap.RSI.Unwrap()
	assert.GreaterOrEqual(t, rsi, 0.0)
	assert.LessOrEqual(t, rsi, 100.0)

	assert.InDelta(t, mean(prices[len(prices)-20:]), snap.SMAShort.Unwrap(), 1e-9)
	assert.InDelta(t, mean(prices[len(prices)-50:]), snap.SMALong.Unwrap(), 1e-9)
	assert.Greater(t, snap.BollingerUpper.Unwrap(), snap.SMAShort.Unwrap())
	assert.Less(t, snap.BollingerLower.Unwrap(), snap.SMAShort.Unwrap())
	assert.True(t, snap.Volatility.IsSome())
}

func TestIndicatorEngineFlatSeriesHasNoRSI(t *testing.T) {
	e := NewIndicatorEngine(mocks.NewMetrics())
	aapl := models.NewStockAsset("AAPL")
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 190
	}
	feed(t, e, aapl, flat)

	snap, ok := e.GetSnapshot(aapl)
	require.True(t, ok)
	assert.True(t, snap.RSI.IsNone())
	assert.Equal(t, 190.0, snap.SMAShort.Unwrap())
	assert.False(t, snap.TrendDiverges())
}

func TestIndicatorEngineBoundsHistory(t *testing.T) {
	e := NewIndicatorEngine(mocks.NewMetrics())
	btc := models.NewCryptoAsset("BTC/USD")
	feed(t, e, btc, wave(250))

	assert.Equal(t, 200, e.HistoryLen(btc))
	snap, _ := e.GetSnapshot(btc)
	assert.Equal(t, 200, snap.Samples)
}

func TestIndicatorEngineRejectsInvalidObservations(t *testing.T) {
	m := mocks.NewMetrics()
	e := NewIndicatorEngine(m)
	btc := models.NewCryptoAsset("BTC/USD")
	feed(t, e, btc, []float64{100})

	tests := []struct {
		name string
		obs  models.PriceObservation
	}{
		{"zero price", models.PriceObservation{Asset: btc, Price: 0, ObservedAt: t0}},
		{"negative price", models.PriceObservation{Asset: btc, Price: -3, ObservedAt: t0}},
		{"NaN price", models.PriceObservation{Asset: btc, Price: math.NaN(), ObservedAt: t0}},
		{"missing asset", models.PriceObservation{Price: 1, ObservedAt: t0}},
		{"missing timestamp", models.PriceObservation{Asset: btc, Price: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Update(context.Background(), tt.obs)
			assert.ErrorIs(t, err, models.ErrInvalidObservation)
		})
	}

	assert.Equal(t, 1, e.HistoryLen(btc))
	price, ok := e.LatestPrice(btc)
	require.True(t, ok)
	assert.Equal(t, 100.0, price)
	assert.Equal(t, len(tests), m.Errors("indicator_invalid_observation"))
}

func TestIndicatorEngineHandsSnapshotsToSink(t *testing.T) {
	ctrl := gomock.NewController(t)
	sink := mocks.NewMockSnapshotSink(ctrl)
	sink.EXPECT().RecordSnapshot(gomock.Any(), gomock.Any()).Return(errors.New("clickhouse down")).Times(2)

	m := mocks.NewMetrics()
	e := NewIndicatorEngine(m, WithSnapshotSink(sink))
	feed(t, e, models.NewStockAsset("TSLA"), wave(52))

	assert.Equal(t, 2, m.Errors("snapshot_sink"))
}

func TestIndicatorEngineAssetsAreIsolated(t *testing.T) {
	e := NewIndicatorEngine(mocks.NewMetrics())
	btc := models.NewCryptoAsset("BTC/USD")
	aapl := models.NewStockAsset("AAPL")
	feed(t, e, btc, wave(60))
	feed(t, e, aapl, []float64{190})

	_, ok := e.GetSnapshot(aapl)
	assert.False(t, ok)
	assert.Equal(t, []models.Asset{btc, aapl}, e.Assets())
}
