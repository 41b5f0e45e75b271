package models

import (
	"math"
	"time"

	"github.com/moznion/go-optional"
)

// PriceObservation is a single last-trade price for an asset.
type PriceObservation struct {
	Asset      Asset     `json:"asset"`
	Price      float64   `json:"price"`
	ObservedAt time.Time `json:"observed_at"`
	Source     string    `json:"source,omitempty"`
}

// Validate rejects observations that must never enter price history.
func (o PriceObservation) Validate() error {
	if o.Asset.Symbol == "" {
		return InvalidObservation("asset symbol empty")
	}
	if !o.Asset.Class.Valid() {
		return InvalidObservation("asset class %q unknown", o.Asset.Class)
	}
	if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) || o.Price <= 0 {
		return InvalidObservation("price %v for %s", o.Price, o.Asset.Symbol)
	}
	if o.ObservedAt.IsZero() {
		return InvalidObservation("timestamp missing for %s", o.Asset.Symbol)
	}
	return nil
}

// IndicatorSnapshot is the latest derived indicator state of one asset.
// A field is None when the history cannot support it.
type IndicatorSnapshot struct {
	Asset          Asset                    `json:"asset"`
	RSI            optional.Option[float64] `json:"rsi"`
	SMAShort       optional.Option[float64] `json:"sma_short"`
	SMALong        optional.Option[float64] `json:"sma_long"`
	BollingerUpper optional.Option[float64] `json:"bollinger_upper"`
	BollingerLower optional.Option[float64] `json:"bollinger_lower"`
	Volatility     optional.Option[float64] `json:"volatility"`
	LastPrice      float64                  `json:"last_price"`
	Samples        int                      `json:"samples"`
	ComputedAt     time.Time                `json:"computed_at"`
}

// TrendDiverges reports whether both SMAs are present and differ.
func (s IndicatorSnapshot) TrendDiverges() bool {
	if s.SMAShort.IsNone() || s.SMALong.IsNone() {
		return false
	}
	return s.SMAShort.Unwrap() != s.SMALong.Unwrap()
}
