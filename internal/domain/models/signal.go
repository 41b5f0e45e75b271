package models

import (
	"time"

	"github.com/moznion/go-optional"
)

// Signal is the trading direction derived from text sentiment.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// Side maps an actionable signal to an order side.
func (s Signal) Side() (OrderSide, bool) {
	switch s {
	case SignalBuy:
		return OrderSideBuy, true
	case SignalSell:
		return OrderSideSell, true
	default:
		return "", false
	}
}

func (s Signal) String() string { return string(s) }

// SentimentEvent is a scored piece of text. It lives for one decision pass
// and is not persisted.
type SentimentEvent struct {
	Text       string                 `json:"text"`
	Asset      optional.Option[Asset] `json:"asset"`
	Signal     Signal                 `json:"signal"`
	Confidence float64                `json:"confidence"`
}

// TextKind is the origin family of a text event.
type TextKind string

const (
	TextKindSocialPost TextKind = "social_post"
	TextKindNewsPost   TextKind = "news_post"
)

// TextEvent is the router envelope for a social or news post.
type TextEvent struct {
	Kind          TextKind  `json:"type" validate:"required,oneof=social_post news_post"`
	Source        string    `json:"source"`
	PostID        string    `json:"post_id"`
	Text          string    `json:"text" validate:"required"`
	CorrelationID string    `json:"correlation_id"`
	ReceivedAt    time.Time `json:"received_at"`
}
