package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradePulse/internal/domain/models"
)

const assetPairsJSON = `{"error":[],"result":{
"XXBTZUSD":{"altname":"XBTUSD","wsname":"XBT/USD","status":"online"},
"XDGUSD":{"altname":"XDGUSD","wsname":"XDG/USD","status":"online"},
"SOLUSD":{"altname":"SOLUSD","wsname":"SOL/USD","status":"online"},
"SOLEUR":{"altname":"SOLEUR","wsname":"SOL/EUR","status":"online"},
"OLDUSD":{"altname":"OLDUSD","wsname":"OLD/USD","status":"delisted"},
"NOWS":{"altname":"NOWS"}}}`

var testSecret = base64.StdEncoding.EncodeToString([]byte("kraken-test-secret"))

func TestNormalizePair(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"XBT/USD", "BTC/USD", true},
		{"XDG/USD", "DOGE/USD", true},
		{"eth/usd", "ETH/USD", true},
		{"ETH/EUR", "", false},
		{"ETHUSD", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePair(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestKnownCryptoPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathAssetPairs, r.URL.Path)
		_, _ = w.Write([]byte(assetPairsJSON))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	pairs, err := c.KnownCryptoPairs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTC/USD", "DOGE/USD", "SOL/USD"}, pairs)
	assert.Equal(t, "XBTUSD", c.restPair("BTC/USD"))
	assert.Equal(t, "ADAUSD", c.restPair("ADA/USD"))
}

func TestKnownCryptoPairsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":["EService:Unavailable"],"result":{}}`))
	}))
	defer srv.Close()

	_, err := NewClient(WithBaseURL(srv.URL)).KnownCryptoPairs(context.Background())
	assert.ErrorContains(t, err, "EService:Unavailable")
}

func TestSubmitSignsOrder(t *testing.T) {
	var form url.Values
	var sign string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathAddOrder, r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("API-Key"))
		sign = r.Header.Get("API-Sign")
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = w.Write([]byte(`{"error":[],"result":{"descr":{"order":"buy 0.2 XBTUSD @ market"},"txid":["O1"]}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithCredentials("key", testSecret))
	c.nonce = func() string { return "1700000000000" }
	err := c.Submit(context.Background(), models.OrderIntent{
		ID:       "intent-1",
		Asset:    models.NewCryptoAsset("BTC/USD"),
		Side:     models.OrderSideBuy,
		Quantity: 0.2,
	})
	require.NoError(t, err)

	assert.Equal(t, "market", form.Get("ordertype"))
	assert.Equal(t, "buy", form.Get("type"))
	assert.Equal(t, "0.2", form.Get("volume"))
	assert.Equal(t, "BTCUSD", form.Get("pair"))
	assert.Equal(t, "intent-1", form.Get("cl_ord_id"))

	sum := sha256.Sum256([]byte("1700000000000" + form.Encode()))
	mac := hmac.New(sha512.New, []byte("kraken-test-secret"))
	mac.Write(append([]byte(pathAddOrder), sum[:]...))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), sign)
}

func TestSubmitRejects(t *testing.T) {
	tests := []struct {
		name   string
		client *Client
		intent models.OrderIntent
	}{
		{"stock asset", NewClient(WithCredentials("k", testSecret)),
			models.OrderIntent{Asset: models.NewStockAsset("AAPL"), Side: models.OrderSideBuy, Quantity: 1}},
		{"no credentials", NewClient(),
			models.OrderIntent{Asset: models.NewCryptoAsset("BTC/USD"), Side: models.OrderSideBuy, Quantity: 1}},
		{"zero volume", NewClient(WithCredentials("k", testSecret)),
			models.OrderIntent{Asset: models.NewCryptoAsset("BTC/USD"), Side: models.OrderSideBuy, Quantity: 1e-12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.client.Submit(context.Background(), tt.intent))
		})
	}
}

func TestSubmitVenueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":["EOrder:Insufficient funds"]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithCredentials("key", testSecret))
	err := c.Submit(context.Background(), models.OrderIntent{
		Asset: models.NewCryptoAsset("ETH/USD"), Side: models.OrderSideSell, Quantity: 1,
	})
	assert.ErrorContains(t, err, "Insufficient funds")
}

func TestTickerCodec(t *testing.T) {
	c := NewTickerCodec()
	fixed := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	frames := c.SubscribeFrames([]string{"BTC/USD"})
	require.Len(t, frames, 1)
	assert.Equal(t, "ticker", frames[0].(subscribeFrame).Params.Channel)

	obs, err := c.Decode([]byte(`{"channel":"ticker","type":"update","data":[{"symbol":"BTC/USD","last":97000.5},{"symbol":"ETH/USD","last":0}]}`))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, models.NewCryptoAsset("BTC/USD"), obs[0].Asset)
	assert.Equal(t, 97000.5, obs[0].Price)
	assert.Equal(t, fixed, obs[0].ObservedAt)

	obs, err = c.Decode([]byte(`{"channel":"heartbeat"}`))
	require.NoError(t, err)
	assert.Empty(t, obs)

	_, err = c.Decode([]byte(`not json`))
	assert.Error(t, err)
}
