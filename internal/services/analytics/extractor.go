package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	dservice "TradePulse/internal/domain/service"
	applogger "TradePulse/pkg/logger"
)

// HTTPTickerExtractor asks the model service for ticker candidates.
type HTTPTickerExtractor struct {
	base     *HTTPServiceBase
	attempts int
}

// NewHTTPTickerExtractor creates an extractor for the service at baseURL.
func NewHTTPTickerExtractor(baseURL string, timeout time.Duration, attempts int) *HTTPTickerExtractor {
	return &HTTPTickerExtractor{base: NewHTTPServiceBase(baseURL, timeout), attempts: attempts}
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Tickers []string `json:"tickers"`
}

func (e *HTTPTickerExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	var resp extractResponse
	if err := e.base.PostJSONWithRetry(ctx, "/tickers/extract", extractRequest{Text: text}, &resp, e.attempts); err != nil {
		return nil, fmt.Errorf("extract tickers: %w", err)
	}
	return resp.Tickers, nil
}

// common uppercase words that are never treated as tickers
var lexicalStopwords = map[string]struct{}{
	"A": {}, "I": {}, "AN": {}, "AND": {}, "ARE": {}, "AS": {}, "AT": {}, "BE": {}, "BY": {},
	"CEO": {}, "CFO": {}, "DD": {}, "ETF": {}, "EU": {}, "FED": {}, "FOR": {}, "GDP": {},
	"IMO": {}, "IN": {}, "IPO": {}, "IS": {}, "IT": {}, "OF": {}, "ON": {}, "OR": {},
	"SEC": {}, "THE": {}, "TO": {}, "UK": {}, "US": {}, "USA": {}, "USD": {}, "WSB": {},
	"YOLO": {}, "ATH": {}, "LOL": {}, "NEWS": {}, "NEW": {}, "NOW": {}, "ALL": {}, "BUY": {},
	"SELL": {}, "HOLD": {}, "MOON": {}, "WITH": {}, "FROM": {}, "THIS": {}, "THAT": {},
}

// LexicalExtractor finds cashtags and standalone uppercase words of two to
// five letters. It never fails.
type LexicalExtractor struct{}

func (LexicalExtractor) Extract(_ context.Context, text string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	for _, field := range strings.Fields(text) {
		cashtag := strings.HasPrefix(field, "$")
		tok := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if tok == "" {
			continue
		}
		up := strings.ToUpper(tok)
		if !cashtag {
			if tok != up || len(tok) < 2 || len(tok) > 5 || !allLetters(tok) {
				continue
			}
			if _, stop := lexicalStopwords[up]; stop {
				continue
			}
		}
		if _, dup := seen[up]; dup {
			continue
		}
		seen[up] = struct{}{}
		out = append(out, up)
	}
	return out, nil
}

func allLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// FallbackExtractor uses primary and falls back to secondary when primary
// fails.
type FallbackExtractor struct {
	primary   dservice.TickerExtractor
	secondary dservice.TickerExtractor
	logger    *applogger.Logger
}

// NewFallbackExtractor chains two extractors. logger may be nil.
func NewFallbackExtractor(primary, secondary dservice.TickerExtractor, logger *applogger.Logger) *FallbackExtractor {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &FallbackExtractor{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackExtractor) Extract(ctx context.Context, text string) ([]string, error) {
	out, err := f.primary.Extract(ctx, text)
	if err == nil {
		return out, nil
	}
	f.logger.Debug("primary extractor failed, using fallback", applogger.Error(err))
	return f.secondary.Extract(ctx, text)
}

var (
	_ dservice.TickerExtractor = (*HTTPTickerExtractor)(nil)
	_ dservice.TickerExtractor = LexicalExtractor{}
	_ dservice.TickerExtractor = (*FallbackExtractor)(nil)
)
