package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradePulse/internal/domain/models"
)

const exchangeInfoJSON = `{"timezone":"UTC","serverTime":1,"symbols":[
{"symbol":"BTCUSDT","status":"TRADING","baseAsset":"BTC","quoteAsset":"USDT"},
{"symbol":"ETHBTC","status":"TRADING","baseAsset":"ETH","quoteAsset":"BTC"},
{"symbol":"PEPEUSDT","status":"TRADING","baseAsset":"PEPE","quoteAsset":"USDT"},
{"symbol":"LUNAUSDT","status":"BREAK","baseAsset":"LUNA","quoteAsset":"USDT"}]}`

func TestKnownCryptoPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		_, _ = w.Write([]byte(exchangeInfoJSON))
	}))
	defer srv.Close()

	pairs, err := New("", "", WithBaseURL(srv.URL)).KnownCryptoPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USD", "PEPE/USD"}, pairs)
}

func TestSubmitMarketOrder(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/order", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("X-MBX-APIKEY"))
		require.NoError(t, r.ParseForm())
		form = r.Form
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":42,"clientOrderId":"intent-1","status":"FILLED"}`))
	}))
	defer srv.Close()

	v := New("key", "secret", WithBaseURL(srv.URL))
	err := v.Submit(context.Background(), models.OrderIntent{
		ID:       "intent-1",
		Asset:    models.NewCryptoAsset("BTC/USD"),
		Side:     models.OrderSideBuy,
		Quantity: 0.0015,
	})
	require.NoError(t, err)
	assert.Equal(t, "BTCUSDT", form.Get("symbol"))
	assert.Equal(t, "BUY", form.Get("side"))
	assert.Equal(t, "MARKET", form.Get("type"))
	assert.Equal(t, "0.0015", form.Get("quantity"))
	assert.Equal(t, "intent-1", form.Get("newClientOrderId"))
	assert.NotEmpty(t, form.Get("signature"))
}

func TestSubmitVenueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance"}`))
	}))
	defer srv.Close()

	err := New("key", "secret", WithBaseURL(srv.URL)).Submit(context.Background(), models.OrderIntent{
		Asset: models.NewCryptoAsset("ETH/USD"), Side: models.OrderSideSell, Quantity: 1,
	})
	assert.ErrorContains(t, err, "insufficient balance")
}

func TestSymbolMapping(t *testing.T) {
	v := New("", "", WithQuote("usdc"))
	assert.Equal(t, "SOLUSDC", v.Symbol(models.NewCryptoAsset("SOL/USD")))
	assert.Error(t, v.Submit(context.Background(), models.OrderIntent{
		Asset: models.NewStockAsset("AAPL"), Side: models.OrderSideBuy, Quantity: 1,
	}))
}
