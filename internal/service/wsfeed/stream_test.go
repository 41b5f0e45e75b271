package wsfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TradePulse/internal/domain/models"
)

type echoCodec struct{}

func (echoCodec) Handshake() []interface{} {
	return []interface{}{map[string]string{"action": "auth"}}
}

func (echoCodec) SubscribeFrames(symbols []string) []interface{} {
	return []interface{}{map[string]interface{}{"action": "subscribe", "symbols": symbols}}
}

func (echoCodec) Decode(frame []byte) ([]*models.PriceObservation, error) {
	var m struct {
		Symbol string  `json:"symbol"`
		Price  float64 `json:"price"`
	}
	if err := json.Unmarshal(frame, &m); err != nil {
		return nil, err
	}
	if m.Symbol == "" {
		return nil, nil
	}
	return []*models.PriceObservation{{
		Asset: models.NewStockAsset(m.Symbol), Price: m.Price, ObservedAt: time.Now(),
	}}, nil
}

// venue answers every subscribe frame with one trade per symbol and records
// the frames it saw.
type venue struct {
	mu     sync.Mutex
	frames []string
	conns  []*websocket.Conn
	ended  int
}

func (v *venue) handler(t *testing.T) http.HandlerFunc {
	up := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		require.NoError(t, err)
		v.mu.Lock()
		v.conns = append(v.conns, conn)
		v.mu.Unlock()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				v.mu.Lock()
				v.ended++
				v.mu.Unlock()
				return
			}
			v.mu.Lock()
			v.frames = append(v.frames, string(msg))
			v.mu.Unlock()

			var f struct {
				Action  string   `json:"action"`
				Symbols []string `json:"symbols"`
			}
			_ = json.Unmarshal(msg, &f)
			for _, s := range f.Symbols {
				_ = conn.WriteJSON(map[string]interface{}{"symbol": s, "price": 10.5})
			}
		}
	}
}

func (v *venue) dropAll() {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range v.conns {
		_ = c.Close()
	}
	v.conns = nil
}

func (v *venue) endedConns() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ended
}

func (v *venue) seen() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.frames...)
}

func newStream(t *testing.T, v *venue) *Stream {
	t.Helper()
	srv := httptest.NewServer(v.handler(t))
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	return New("test", Config{URL: url, ReconnectDelay: time.Millisecond, PingInterval: time.Second}, echoCodec{}, nil)
}

func next(t *testing.T, ch <-chan *models.PriceObservation) *models.PriceObservation {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("no observation")
		return nil
	}
}

func TestStreamSubscribeAndRead(t *testing.T) {
	v := &venue{}
	s := newStream(t, v)
	ctx := context.Background()

	assert.ErrorIs(t, s.Subscribe(ctx, "GME"), ErrNotConnected)
	require.NoError(t, s.Connect(ctx))
	assert.True(t, s.IsConnected())
	require.NoError(t, s.Subscribe(ctx, "AAPL"))

	obs, _ := s.Read(ctx)
	o := next(t, obs)
	assert.Equal(t, "AAPL", o.Asset.Symbol)
	assert.Equal(t, 10.5, o.Price)

	assert.Eventually(t, func() bool { return len(v.seen()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, v.seen()[0], "auth")
	assert.Equal(t, []string{"AAPL", "GME"}, s.Symbols())
	require.NoError(t, s.Close())
}

func TestStreamReconnectKeepsChannels(t *testing.T) {
	v := &venue{}
	s := newStream(t, v)
	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Subscribe(ctx, "AAPL"))
	obs, errs := s.Read(ctx)
	next(t, obs)

	v.dropAll()
	select {
	case err := <-errs:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("no stream error")
	}
	assert.False(t, s.IsConnected())

	require.NoError(t, s.Reconnect(ctx))
	o := next(t, obs)
	assert.Equal(t, "AAPL", o.Asset.Symbol)

	require.NoError(t, s.Close())
	_, open := <-obs
	assert.False(t, open)
	assert.Error(t, s.Connect(ctx))
}

func TestStreamConnectReplacesLiveConnection(t *testing.T) {
	v := &venue{}
	s := newStream(t, v)
	ctx := context.Background()
	require.NoError(t, s.Connect(ctx))
	require.NoError(t, s.Connect(ctx))

	assert.Eventually(t, func() bool { return v.endedConns() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsConnected())

	_, errs := s.Read(ctx)
	select {
	case err := <-errs:
		t.Fatalf("replaced connection reported %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, s.Subscribe(ctx, "MSFT"))
	obs, _ := s.Read(ctx)
	assert.Equal(t, "MSFT", next(t, obs).Asset.Symbol)

	require.NoError(t, s.Close())
	assert.Eventually(t, func() bool { return v.endedConns() == 2 }, time.Second, 5*time.Millisecond)
}
