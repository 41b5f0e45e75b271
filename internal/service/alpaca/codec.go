package alpaca

import (
	"encoding/json"
	"fmt"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/service/wsfeed"
)

const DefaultDataURL = "wss://stream.data.alpaca.markets/v2/iex"

// TradeCodec speaks the market data stream: auth, trade subscriptions and
// trade messages.
type TradeCodec struct {
	key    string
	secret string
}

// NewTradeCodec creates a codec authenticating with key and secret.
func NewTradeCodec(key, secret string) *TradeCodec {
	return &TradeCodec{key: key, secret: secret}
}

type authFrame struct {
	Action string `json:"action"`
	Key    string `json:"key"`
	Secret string `json:"secret"`
}

type subscribeFrame struct {
	Action string   `json:"action"`
	Trades []string `json:"trades"`
}

// streamMessage names every lower-case trade key so encoding/json never
// folds one onto an upper-case field ("s" is size, "S" is the symbol).
type streamMessage struct {
	Type       string          `json:"T"`
	Symbol     string          `json:"S"`
	Price      float64         `json:"p"`
	Timestamp  time.Time       `json:"t"`
	Size       json.RawMessage `json:"s"`
	TradeID    json.RawMessage `json:"i"`
	Exchange   json.RawMessage `json:"x"`
	Conditions json.RawMessage `json:"c"`
	Tape       json.RawMessage `json:"z"`
	Code       int             `json:"code"`
	Msg        string          `json:"msg"`
}

func (c *TradeCodec) Handshake() []interface{} {
	return []interface{}{authFrame{Action: "auth", Key: c.key, Secret: c.secret}}
}

func (c *TradeCodec) SubscribeFrames(symbols []string) []interface{} {
	return []interface{}{subscribeFrame{Action: "subscribe", Trades: symbols}}
}

// Decode reads a message array. An error message ends the connection.
func (c *TradeCodec) Decode(frame []byte) ([]*models.PriceObservation, error) {
	var msgs []streamMessage
	if err := json.Unmarshal(frame, &msgs); err != nil {
		return nil, fmt.Errorf("alpaca frame: %w", err)
	}
	var out []*models.PriceObservation
	for _, m := range msgs {
		switch m.Type {
		case "error":
			return out, fmt.Errorf("alpaca stream error %d: %s", m.Code, m.Msg)
		case "t":
			if m.Symbol == "" || m.Price <= 0 {
				continue
			}
			ts := m.Timestamp
			if ts.IsZero() {
				ts = time.Now()
			}
			out = append(out, &models.PriceObservation{
				Asset:      models.NewStockAsset(m.Symbol),
				Price:      m.Price,
				ObservedAt: ts,
				Source:     "alpaca",
			})
		}
	}
	return out, nil
}

var _ wsfeed.Codec = (*TradeCodec)(nil)
