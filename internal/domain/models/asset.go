package models

import "strings"

// AssetClass distinguishes the venue family an asset trades on.
type AssetClass string

const (
	AssetClassCrypto AssetClass = "crypto"
	AssetClassStock  AssetClass = "stock"
)

// QuoteUSD is the quote currency every monitored crypto pair is priced in.
const QuoteUSD = "USD"

// Valid reports whether c is a known asset class.
func (c AssetClass) Valid() bool {
	return c == AssetClassCrypto || c == AssetClassStock
}

func (c AssetClass) String() string { return string(c) }

// Asset is a tradable instrument. Crypto symbols are BASE/QUOTE pairs,
// stock symbols are bare tickers.
type Asset struct {
	Symbol string     `json:"symbol" validate:"required"`
	Class  AssetClass `json:"class" validate:"required,oneof=crypto stock"`
}

// NewCryptoAsset builds a crypto asset from a BASE/QUOTE pair.
func NewCryptoAsset(pair string) Asset {
	return Asset{Symbol: strings.ToUpper(strings.TrimSpace(pair)), Class: AssetClassCrypto}
}

// NewStockAsset builds a stock asset from a ticker.
func NewStockAsset(ticker string) Asset {
	return Asset{Symbol: strings.ToUpper(strings.TrimSpace(ticker)), Class: AssetClassStock}
}

// CryptoPairFor returns the USD pair for a crypto base ticker, e.g. BTC -> BTC/USD.
func CryptoPairFor(base string) string {
	return strings.ToUpper(base) + "/" + QuoteUSD
}

// Key is unique across classes and is used for sharding and map keys.
func (a Asset) Key() string { return string(a.Class) + ":" + a.Symbol }

// Base returns the base ticker: the part before "/" for pairs, the symbol otherwise.
func (a Asset) Base() string {
	if i := strings.IndexByte(a.Symbol, '/'); i > 0 {
		return a.Symbol[:i]
	}
	return a.Symbol
}

// IsZero reports whether the asset is unset.
func (a Asset) IsZero() bool { return a.Symbol == "" }

func (a Asset) String() string { return a.Symbol }
