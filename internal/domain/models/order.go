package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of an order intent.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderIntent is a market order the decision engine wants executed.
// It carries no execution guarantee.
type OrderIntent struct {
	ID             string    `json:"id"`
	CorrelationID  string    `json:"correlation_id"`
	Asset          Asset     `json:"asset"`
	Side           OrderSide `json:"side"`
	Quantity       float64   `json:"quantity"`
	Notional       float64   `json:"notional"`
	ReferencePrice float64   `json:"reference_price"`
	Signal         Signal    `json:"signal"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

// QuantityDecimal returns the quantity rounded to places decimals for venue payloads.
func (i OrderIntent) QuantityDecimal(places int32) decimal.Decimal {
	return decimal.NewFromFloat(i.Quantity).Round(places)
}

// Fill is an executed trade reported by the paper account.
type Fill struct {
	IntentID string    `json:"intent_id"`
	Asset    Asset     `json:"asset"`
	Side     OrderSide `json:"side"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Notional float64   `json:"notional"`
	Venue    string    `json:"venue"`
	FilledAt time.Time `json:"filled_at"`
}
