package kraken

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/service/wsfeed"
)

const DefaultWSURL = "wss://ws.kraken.com/v2"

// TickerCodec speaks the v2 ticker channel.
type TickerCodec struct {
	now func() time.Time
}

// NewTickerCodec creates the codec.
func NewTickerCodec() *TickerCodec { return &TickerCodec{now: time.Now} }

type subscribeFrame struct {
	Method string          `json:"method"`
	Params subscribeParams `json:"params"`
}

type subscribeParams struct {
	Channel string   `json:"channel"`
	Symbol  []string `json:"symbol"`
}

type tickerFrame struct {
	Channel string       `json:"channel"`
	Type    string       `json:"type"`
	Data    []tickerData `json:"data"`
}

type tickerData struct {
	Symbol    string  `json:"symbol"`
	Last      float64 `json:"last"`
	Timestamp string  `json:"timestamp"`
}

func (c *TickerCodec) Handshake() []interface{} { return nil }

func (c *TickerCodec) SubscribeFrames(symbols []string) []interface{} {
	return []interface{}{subscribeFrame{
		Method: "subscribe",
		Params: subscribeParams{Channel: "ticker", Symbol: symbols},
	}}
}

// Decode emits one observation per ticker entry. Heartbeats, status and
// method acks yield nothing.
func (c *TickerCodec) Decode(frame []byte) ([]*models.PriceObservation, error) {
	var f tickerFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		return nil, fmt.Errorf("kraken frame: %w", err)
	}
	if f.Channel != "ticker" {
		return nil, nil
	}

	out := make([]*models.PriceObservation, 0, len(f.Data))
	for _, d := range f.Data {
		if d.Symbol == "" || d.Last <= 0 {
			continue
		}
		ts := c.now()
		if d.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, d.Timestamp); err == nil {
				ts = parsed
			}
		}
		out = append(out, &models.PriceObservation{
			Asset:      models.NewCryptoAsset(strings.ToUpper(d.Symbol)),
			Price:      d.Last,
			ObservedAt: ts,
			Source:     "kraken",
		})
	}
	return out, nil
}

var _ wsfeed.Codec = (*TickerCodec)(nil)
