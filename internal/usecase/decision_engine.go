package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"

	"github.com/google/uuid"
)

// MarketReader is the read side of the indicator engine. The snapshot
// carries the price it was computed at.
type MarketReader interface {
	SnapshotReader
}

// Scorer turns text into a sentiment event. err explains a forced hold and
// is nil otherwise.
type Scorer interface {
	Assess(ctx context.Context, text string) (models.SentimentEvent, error)
}

// Sizer returns the USD notional of a trade in asset.
type Sizer interface {
	TradeVolumeUSD(asset models.Asset) float64
}

// DecisionOption configures DecisionEngine.
type DecisionOption func(*DecisionEngine)

// WithDispatcher routes intents of class to d.
func WithDispatcher(class models.AssetClass, d drepo.OrderDispatcher) DecisionOption {
	return func(e *DecisionEngine) { e.dispatchers[class] = d }
}

// WithAuditSink records every scored decision.
func WithAuditSink(sink drepo.AuditSink) DecisionOption {
	return func(e *DecisionEngine) { e.audit = sink }
}

// WithRSIBounds sets the oversold (buy) and overbought (sell) RSI gates.
func WithRSIBounds(oversold, overbought float64) DecisionOption {
	return func(e *DecisionEngine) {
		e.oversold = oversold
		e.overbought = overbought
	}
}

// WithDecisionLogger sets the logger.
func WithDecisionLogger(l *applogger.Logger) DecisionOption {
	return func(e *DecisionEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithDecisionClock overrides time.Now (useful for testing).
func WithDecisionClock(now func() time.Time) DecisionOption {
	return func(e *DecisionEngine) { e.now = now }
}

// WithIntentIDs overrides intent id generation (useful for testing).
func WithIntentIDs(gen func() string) DecisionOption {
	return func(e *DecisionEngine) { e.newID = gen }
}

// DecisionEngine resolves the asset a text is about, scores it, confirms the
// signal against RSI and emits a sized order intent.
type DecisionEngine struct {
	market      MarketReader
	sizer       Sizer
	scorer      Scorer
	dispatchers map[models.AssetClass]drepo.OrderDispatcher
	audit       drepo.AuditSink
	metrics     drepo.Metrics
	logger      *applogger.Logger
	now         func() time.Time
	newID       func() string
	oversold    float64
	overbought  float64

	watchMu  sync.Mutex
	keywords atomic.Pointer[keywordSet]
}

// NewDecisionEngine creates an engine watching no assets.
func NewDecisionEngine(market MarketReader, sizer Sizer, scorer Scorer, metrics drepo.Metrics, opts ...DecisionOption) *DecisionEngine {
	e := &DecisionEngine{
		market:      market,
		sizer:       sizer,
		scorer:      scorer,
		dispatchers: make(map[models.AssetClass]drepo.OrderDispatcher),
		metrics:     metrics,
		logger:      applogger.Nop(),
		now:         time.Now,
		newID:       uuid.NewString,
		oversold:    30,
		overbought:  70,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.keywords.Store(emptyKeywordSet())
	return e
}

// WatchAsset adds the keyword forms of asset to the matcher. It returns false
// when the asset was already watched.
func (e *DecisionEngine) WatchAsset(asset models.Asset) bool {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	cur := e.keywords.Load()
	if cur.contains(asset) {
		return false
	}
	e.keywords.Store(cur.with(asset))
	e.logger.Info("watching asset",
		applogger.String("asset", asset.Symbol),
		applogger.String("class", asset.Class.String()))
	return true
}

// IsWatching reports whether asset is in the keyword maps.
func (e *DecisionEngine) IsWatching(asset models.Asset) bool {
	return e.keywords.Load().contains(asset)
}

// Resolve returns the watched asset text refers to.
func (e *DecisionEngine) Resolve(text string) (models.Asset, bool) {
	return e.keywords.Load().resolve(text)
}

// HandleTextEvent adapts HandleText to the router's text sink.
func (e *DecisionEngine) HandleTextEvent(ctx context.Context, ev models.TextEvent) {
	e.HandleText(ctx, ev.Text, ev.CorrelationID)
}

// HandleText runs one text event through resolve, score, confirm, size and
// dispatch. It never returns an error; the outcome is in the Decision.
func (e *DecisionEngine) HandleText(ctx context.Context, text, correlationID string) models.Decision {
	start := time.Now()
	defer func() { e.metrics.RecordLatency("decision", time.Since(start).Seconds()) }()

	dec := models.Decision{CorrelationID: correlationID}

	asset, ok := e.Resolve(text)
	if !ok {
		dec.Outcome = models.OutcomeUnresolved
		dec.Err = models.NewUnresolved()
		e.metrics.RecordDecision(string(dec.Outcome), "")
		return dec
	}
	dec.Asset = asset

	sentiment, scoreErr := e.scorer.Assess(ctx, text)
	dec.Signal, dec.Confidence = sentiment.Signal, sentiment.Confidence
	if dec.Signal == models.SignalHold {
		dec.Outcome = models.OutcomeHold
		if scoreErr != nil {
			dec.Err = scoreErr
			dec.Reason = scoreErr.Error()
			var de *models.DecisionError
			if errors.As(scoreErr, &de) && de.Reason != "" {
				dec.Reason = de.Reason
			}
		}
		return e.finish(ctx, dec)
	}

	// price and indicators come from one snapshot so RSI and sizing agree
	snap, hasSnap := e.market.GetSnapshot(asset)
	price := snap.LastPrice
	if !hasSnap || price <= 0 {
		dec.Outcome = models.OutcomeUnconfirmable
		dec.Reason = "no price or indicators"
		dec.Err = models.ErrInsufficientHistory
		return e.finish(ctx, dec)
	}

	if err := e.Confirm(dec.Signal, snap); err != nil {
		dec.Outcome = models.OutcomeRejected
		dec.Reason = err.Reason
		dec.Err = err
		e.logger.Info("signal rejected",
			applogger.String("asset", asset.Symbol),
			applogger.String("signal", dec.Signal.String()),
			applogger.String("reason", err.Reason),
			applogger.String("correlation_id", correlationID))
		return e.finish(ctx, dec)
	}

	side, _ := dec.Signal.Side()
	notional := e.sizer.TradeVolumeUSD(asset)
	intent := models.OrderIntent{
		ID:             e.newID(),
		CorrelationID:  correlationID,
		Asset:          asset,
		Side:           side,
		Quantity:       notional / price,
		Notional:       notional,
		ReferencePrice: price,
		Signal:         dec.Signal,
		Confidence:     dec.Confidence,
		CreatedAt:      e.now(),
	}
	dec.Intent = &intent

	if err := e.dispatch(ctx, intent); err != nil {
		dec.Outcome = models.OutcomeDispatchFailed
		dec.Reason = err.Error()
		dec.Err = models.NewCollaboratorFailure("order_dispatcher", err)
		e.metrics.RecordError("order_dispatch")
		e.logger.Error("order dispatch failed",
			applogger.String("asset", asset.Symbol),
			applogger.String("intent_id", intent.ID),
			applogger.Error(err))
		return e.finish(ctx, dec)
	}

	dec.Outcome = models.OutcomeConfirmed
	e.logger.Info("order intent dispatched",
		applogger.String("asset", asset.Symbol),
		applogger.String("side", string(intent.Side)),
		applogger.Float64("quantity", intent.Quantity),
		applogger.Float64("price", price),
		applogger.Float64("confidence", dec.Confidence),
		applogger.String("intent_id", intent.ID))
	return e.finish(ctx, dec)
}

// Confirm gates a buy on RSI at or below the oversold bound and a sell on RSI
// at or above the overbought bound.
func (e *DecisionEngine) Confirm(signal models.Signal, snap models.IndicatorSnapshot) *models.DecisionError {
	if snap.RSI.IsNone() {
		return models.NewRejection("RSI not available")
	}
	rsi := snap.RSI.Unwrap()
	switch signal {
	case models.SignalBuy:
		if rsi <= e.oversold {
			return nil
		}
	case models.SignalSell:
		if rsi >= e.overbought {
			return nil
		}
	}
	return models.NewRejection(fmt.Sprintf("RSI out of bounds (%.2f)", rsi))
}

func (e *DecisionEngine) dispatch(ctx context.Context, intent models.OrderIntent) error {
	d, ok := e.dispatchers[intent.Asset.Class]
	if !ok {
		return fmt.Errorf("no dispatcher for %s assets", intent.Asset.Class)
	}
	return d.Submit(ctx, intent)
}

func (e *DecisionEngine) finish(ctx context.Context, dec models.Decision) models.Decision {
	e.metrics.RecordDecision(string(dec.Outcome), dec.Asset.Class.String())
	if e.audit == nil {
		return dec
	}
	if err := e.audit.Record(ctx, models.AuditRecordFrom(dec, e.now())); err != nil {
		e.metrics.RecordError("audit_sink")
		e.logger.Debug("audit record not persisted",
			applogger.String("correlation_id", dec.CorrelationID),
			applogger.Error(err))
	}
	return dec
}
