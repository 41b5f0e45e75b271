package usecase

import (
	"strings"
	"unicode"

	"TradePulse/internal/domain/models"
)

// keywordSet is an immutable matcher snapshot. Writers build a new set and
// swap it in; readers never lock.
type keywordSet struct {
	stocks []stockKeyword
	crypto []cryptoKeyword
	assets map[string]struct{}
}

type stockKeyword struct {
	ticker string
	dollar string
	asset  models.Asset
}

type cryptoKeyword struct {
	forms []string // lower case
	asset models.Asset
}

func emptyKeywordSet() *keywordSet {
	return &keywordSet{assets: make(map[string]struct{})}
}

func (k *keywordSet) contains(asset models.Asset) bool {
	_, ok := k.assets[asset.Key()]
	return ok
}

// with returns a copy of k that also matches asset.
func (k *keywordSet) with(asset models.Asset) *keywordSet {
	next := &keywordSet{
		stocks: append([]stockKeyword(nil), k.stocks...),
		crypto: append([]cryptoKeyword(nil), k.crypto...),
		assets: make(map[string]struct{}, len(k.assets)+1),
	}
	for key := range k.assets {
		next.assets[key] = struct{}{}
	}
	next.assets[asset.Key()] = struct{}{}

	switch asset.Class {
	case models.AssetClassStock:
		next.stocks = append(next.stocks, stockKeyword{
			ticker: asset.Symbol,
			dollar: "$" + asset.Symbol,
			asset:  asset,
		})
	case models.AssetClassCrypto:
		forms := []string{strings.ToLower(asset.Symbol)}
		if base := strings.ToLower(asset.Base()); base != forms[0] {
			forms = append(forms, base)
		}
		next.crypto = append(next.crypto, cryptoKeyword{forms: forms, asset: asset})
	}
	return next
}

// resolve finds the asset a text talks about. Stocks win over crypto: a
// $TICKER cashtag or a standalone upper-case token matches a stock, otherwise
// any crypto form matching case-insensitively as a substring wins. Ties go
// to the asset watched first.
func (k *keywordSet) resolve(text string) (models.Asset, bool) {
	if len(k.stocks) > 0 {
		tokens := upperTokens(text)
		for _, kw := range k.stocks {
			if strings.Contains(text, kw.dollar) {
				return kw.asset, true
			}
			if _, ok := tokens[kw.ticker]; ok {
				return kw.asset, true
			}
		}
	}

	if len(k.crypto) > 0 {
		lower := strings.ToLower(text)
		for _, kw := range k.crypto {
			for _, form := range kw.forms {
				if strings.Contains(lower, form) {
					return kw.asset, true
				}
			}
		}
	}
	return models.Asset{}, false
}

// upperTokens returns the whitespace separated tokens of text, stripped of
// surrounding punctuation, that are written entirely in upper case.
func upperTokens(text string) map[string]struct{} {
	fields := strings.Fields(text)
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if tok == "" || tok != strings.ToUpper(tok) {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}
