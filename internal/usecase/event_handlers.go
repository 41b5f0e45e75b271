package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	pkgkafka "TradePulse/pkg/kafka"
	"TradePulse/pkg/util"
)

// TextSubmitter accepts text events for routing.
type TextSubmitter interface {
	SubmitText(ctx context.Context, ev models.TextEvent) error
}

// TextEventHandler consumes social and news posts from Kafka.
//
// incoming message schema: {type, source, post_id, text, correlation_id?}
type TextEventHandler struct {
	topic   string
	router  TextSubmitter
	metrics domrepo.Metrics
}

func NewTextEventHandler(topic string, router TextSubmitter, metrics domrepo.Metrics) *TextEventHandler {
	return &TextEventHandler{topic: topic, router: router, metrics: metrics}
}

func (h *TextEventHandler) Topic() string { return h.topic }

// Handle decodes and routes one message. Malformed messages are returned as
// errors so they end in the DLQ; a full router queue is not retried.
func (h *TextEventHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.TextEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("%w: %w", models.ErrInvalidEvent, err)
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = pkgkafka.TraceID(ctx)
	}
	if ev.Source == "" {
		ev.Source = "kafka"
	}
	if start, ok := pkgkafka.StartTime(ctx); ok {
		ev.ReceivedAt = start
	}

	err := h.router.SubmitText(ctx, ev)
	switch {
	case err == nil:
		h.metrics.RecordMessageSent("router", string(ev.Kind))
		return nil
	case errors.Is(err, models.ErrQueueFull):
		return nil
	default:
		return err
	}
}

// MarketReplayer accepts observations from a durable feed without throttling.
type MarketReplayer interface {
	ReplayMarket(ctx context.Context, obs models.PriceObservation) error
}

// MarketEventHandler consumes price observations from Kafka, e.g. replayed
// or externally collected feeds.
//
// incoming message schema: {symbol, class, price, ts} where class is crypto
// or stock and ts is RFC3339 or unix seconds/milliseconds.
type MarketEventHandler struct {
	topic   string
	router  MarketReplayer
	metrics domrepo.Metrics
	now     func() time.Time
}

func NewMarketEventHandler(topic string, router MarketReplayer, metrics domrepo.Metrics) *MarketEventHandler {
	return &MarketEventHandler{topic: topic, router: router, metrics: metrics, now: time.Now}
}

func (h *MarketEventHandler) Topic() string { return h.topic }

func (h *MarketEventHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string          `json:"symbol"`
		Class  string          `json:"class"`
		Price  float64         `json:"price"`
		TS     json.RawMessage `json:"ts"`
		Source string          `json:"source"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return fmt.Errorf("%w: %w", models.ErrInvalidObservation, err)
	}

	var asset models.Asset
	switch models.AssetClass(strings.ToLower(strings.TrimSpace(m.Class))) {
	case models.AssetClassStock:
		asset = models.NewStockAsset(m.Symbol)
	case models.AssetClassCrypto:
		asset = models.NewCryptoAsset(m.Symbol)
	default:
		h.metrics.RecordError("consumer_class")
		return models.InvalidObservation("unknown asset class %q for %q", m.Class, m.Symbol)
	}
	observed, ok := util.ParseTime(strings.Trim(string(m.TS), `"`))
	if !ok {
		observed = h.now()
	}
	if m.Source == "" {
		m.Source = "kafka"
	}

	obs := models.PriceObservation{Asset: asset, Price: m.Price, ObservedAt: observed, Source: m.Source}
	h.metrics.RecordLatency("ingest_e2e", h.now().Sub(observed).Seconds())

	// a full lane is returned so the consumer redelivers this offset
	// instead of committing a gap in the history
	if err := h.router.ReplayMarket(ctx, obs); err != nil {
		return fmt.Errorf("replay %s: %w", asset, err)
	}
	return nil
}

var (
	_ pkgkafka.MessageHandler = (*TextEventHandler)(nil)
	_ pkgkafka.MessageHandler = (*MarketEventHandler)(nil)
)
