package paper

import (
	"context"
	"strings"

	drepo "TradePulse/internal/domain/repository"
)

// Listing is a fixed venue registry for paper trading without venue
// credentials.
type Listing struct {
	Pairs   []string
	Tickers []string
}

func (l Listing) KnownCryptoPairs(context.Context) ([]string, error) {
	return upper(l.Pairs), nil
}

func (l Listing) KnownStockTickers(context.Context) ([]string, error) {
	return upper(l.Tickers), nil
}

func upper(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var _ drepo.VenueListing = Listing{}
