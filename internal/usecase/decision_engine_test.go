package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type fakeMarket struct {
	snaps map[string]models.IndicatorSnapshot
}

func (f *fakeMarket) GetSnapshot(a models.Asset) (models.IndicatorSnapshot, bool) {
	s, ok := f.snaps[a.Key()]
	return s, ok
}

func (f *fakeMarket) set(a models.Asset, price float64, rsi optional.Option[float64]) {
	f.snaps[a.Key()] = models.IndicatorSnapshot{Asset: a, RSI: rsi, LastPrice: price}
}

type stubScorer struct {
	signal models.Signal
	conf   float64
}

func (s stubScorer) Assess(_ context.Context, text string) (models.SentimentEvent, error) {
	return models.SentimentEvent{Text: text, Signal: s.signal, Confidence: s.conf}, nil
}

type heldScorer struct {
	conf float64
	err  error
}

func (s heldScorer) Assess(_ context.Context, text string) (models.SentimentEvent, error) {
	return models.SentimentEvent{Text: text, Signal: models.SignalHold, Confidence: s.conf}, s.err
}

type DecisionEngineSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	market  *fakeMarket
	crypto  *mocks.MockOrderDispatcher
	stocks  *mocks.MockOrderDispatcher
	audit   *mocks.MockAuditSink
	metrics *mocks.Metrics
	btc     models.Asset
	aapl    models.Asset
}

func TestDecisionEngineSuite(t *testing.T) {
	suite.Run(t, new(DecisionEngineSuite))
}

func (s *DecisionEngineSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.market = &fakeMarket{snaps: map[string]models.IndicatorSnapshot{}}
	s.crypto = mocks.NewMockOrderDispatcher(s.ctrl)
	s.stocks = mocks.NewMockOrderDispatcher(s.ctrl)
	s.audit = mocks.NewMockAuditSink(s.ctrl)
	s.metrics = mocks.NewMetrics()
	s.btc = models.NewCryptoAsset("BTC/USD")
	s.aapl = models.NewStockAsset("AAPL")
}

func (s *DecisionEngineSuite) engine(sc Scorer) *DecisionEngine {
	e := NewDecisionEngine(s.market, NewRiskSizer(s.market, 20, 100), sc, s.metrics,
		WithDispatcher(models.AssetClassCrypto, s.crypto),
		WithDispatcher(models.AssetClassStock, s.stocks),
		WithAuditSink(s.audit),
		WithIntentIDs(func() string { return "intent-1" }),
	)
	e.WatchAsset(s.btc)
	e.WatchAsset(s.aapl)
	return e
}

func (s *DecisionEngineSuite) expectAudit(outcome models.Outcome) {
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec models.AuditRecord) error {
			s.Equal(outcome, rec.Outcome)
			return nil
		})
}

func (s *DecisionEngineSuite) TestConfirmedBuyIsSizedFromPrice() {
	s.market.set(s.btc, 100, optional.Some(25.0))
	s.expectAudit(models.OutcomeConfirmed)

	var got models.OrderIntent
	s.crypto.EXPECT().Submit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in models.OrderIntent) error {
			got = in
			return nil
		}).Times(1)

	dec := s.engine(stubScorer{models.SignalBuy, 0.9}).HandleText(context.Background(), "btc is breaking out", "c-1")

	s.Equal(models.OutcomeConfirmed, dec.Outcome)
	s.Equal(s.btc, got.Asset)
	s.Equal(models.OrderSideBuy, got.Side)
	s.InDelta(0.2, got.Quantity, 1e-12)
	s.Equal(100.0, got.ReferencePrice)
	s.Equal(20.0, got.Notional)
	s.Equal("c-1", got.CorrelationID)
	s.Equal("intent-1", got.ID)
}

func (s *DecisionEngineSuite) TestSellNeedsOverboughtRSI() {
	s.market.set(s.aapl, 200, optional.Some(75.0))
	s.expectAudit(models.OutcomeConfirmed)
	s.stocks.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(nil)

	dec := s.engine(stubScorer{models.SignalSell, 0.8}).HandleText(context.Background(), "dumping $AAPL", "c-2")
	s.Equal(models.OutcomeConfirmed, dec.Outcome)
	s.Equal(models.OrderSideSell, dec.Intent.Side)
}

func (s *DecisionEngineSuite) TestMidRangeRSIRejectsBothSides() {
	s.market.set(s.btc, 100, optional.Some(50.0))
	for _, sig := range []models.Signal{models.SignalBuy, models.SignalSell} {
		s.expectAudit(models.OutcomeRejected)
		dec := s.engine(stubScorer{sig, 0.9}).HandleText(context.Background(), "BTC news", "c")
		s.Equal(models.OutcomeRejected, dec.Outcome)
		s.Equal("RSI out of bounds (50.00)", dec.Reason)
		s.True(dec.Is(models.ErrConfirmationRejected))
		s.Nil(dec.Intent)
	}
}

func (s *DecisionEngineSuite) TestMissingRSIRejects() {
	s.market.set(s.btc, 100, optional.None[float64]())
	s.expectAudit(models.OutcomeRejected)

	dec := s.engine(stubScorer{models.SignalBuy, 0.9}).HandleText(context.Background(), "btc", "c")
	s.Equal("RSI not available", dec.Reason)
}

func (s *DecisionEngineSuite) TestNoIndicatorsIsUnconfirmable() {
	s.expectAudit(models.OutcomeUnconfirmable)

	dec := s.engine(stubScorer{models.SignalBuy, 0.9}).HandleText(context.Background(), "btc", "c")
	s.Equal(models.OutcomeUnconfirmable, dec.Outcome)
	s.True(dec.Is(models.ErrInsufficientHistory))
}

func (s *DecisionEngineSuite) TestHoldStopsBeforeMarketData() {
	s.expectAudit(models.OutcomeHold)

	dec := s.engine(stubScorer{models.SignalHold, 0.4}).HandleText(context.Background(), "btc", "c")
	s.Equal(models.OutcomeHold, dec.Outcome)
	s.Equal(0.4, dec.Confidence)
}

func (s *DecisionEngineSuite) TestLowConfidenceHoldIsAuditedWithReason() {
	var rec models.AuditRecord
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, r models.AuditRecord) error {
			rec = r
			return nil
		})

	dec := s.engine(heldScorer{conf: 0.45, err: models.NewLowConfidence(0.45, 0.6)}).HandleText(context.Background(), "btc", "c-lc")
	s.Equal(models.OutcomeHold, dec.Outcome)
	s.True(dec.Is(models.ErrLowConfidenceSignal))
	s.Equal("low confidence (0.45 < 0.60)", dec.Reason)
	s.Equal(models.OutcomeHold, rec.Outcome)
	s.Equal("low confidence (0.45 < 0.60)", rec.Reason)
	s.Equal(0.45, rec.Confidence)
}

func (s *DecisionEngineSuite) TestClassifierFailureHoldNamesCollaborator() {
	s.expectAudit(models.OutcomeHold)

	dec := s.engine(heldScorer{err: models.NewCollaboratorFailure("sentiment_classifier", errors.New("model offline"))}).
		HandleText(context.Background(), "btc", "c")
	s.True(dec.Is(models.ErrCollaboratorFailure))
	s.Equal("sentiment_classifier", dec.Reason)
}

func (s *DecisionEngineSuite) TestZeroSnapshotPriceIsUnconfirmable() {
	s.market.set(s.btc, 0, optional.Some(20.0))
	s.expectAudit(models.OutcomeUnconfirmable)

	dec := s.engine(stubScorer{models.SignalBuy, 0.9}).HandleText(context.Background(), "btc", "c")
	s.Equal(models.OutcomeUnconfirmable, dec.Outcome)
	s.Nil(dec.Intent)
}

func (s *DecisionEngineSuite) TestUnresolvedTextIsDroppedSilently() {
	dec := s.engine(stubScorer{models.SignalBuy, 0.9}).HandleText(context.Background(), "nothing to see", "c")
	s.Equal(models.OutcomeUnresolved, dec.Outcome)
	s.True(dec.Is(models.ErrUnresolvedAsset))
	var de *models.DecisionError
	s.Require().ErrorAs(dec.Err, &de)
	s.Equal(models.CodeUnresolvedAsset, de.Code)
	s.Equal(1, s.metrics.Decisions("unresolved"))
}

func (s *DecisionEngineSuite) TestDispatchFailureIsAuditedNotPropagated() {
	s.market.set(s.btc, 100, optional.Some(20.0))
	s.expectAudit(models.OutcomeDispatchFailed)
	s.crypto.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(errors.New("venue down"))

	dec := s.engine(stubScorer{models.SignalBuy, 0.9}).HandleText(context.Background(), "btc", "c")
	s.Equal(models.OutcomeDispatchFailed, dec.Outcome)
	s.True(dec.Is(models.ErrCollaboratorFailure))
	s.Equal(1, s.metrics.Errors("order_dispatch"))
}

func (s *DecisionEngineSuite) TestAuditFailureDoesNotChangeOutcome() {
	s.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("queue full"))

	dec := s.engine(stubScorer{models.SignalHold, 0.9}).HandleText(context.Background(), "btc", "c")
	s.Equal(models.OutcomeHold, dec.Outcome)
	s.Equal(1, s.metrics.Errors("audit_sink"))
}

func (s *DecisionEngineSuite) TestResolvePrefersStocks() {
	e := s.engine(stubScorer{})
	eth := models.NewCryptoAsset("ETH/USD")
	e.WatchAsset(eth)

	tests := []struct {
		text string
		want models.Asset
		ok   bool
	}{
		{"$AAPL and eth together", s.aapl, true},
		{"AAPL, ETH rally", s.aapl, true},
		{"Ethereum upgrade ships", eth, true},
		{"btc/usd breaks 70k", s.btc, true},
		{"aapl lowercase is not a ticker", models.Asset{}, false},
		{"PAAPL is another company", models.Asset{}, false},
	}
	for _, tt := range tests {
		got, ok := e.Resolve(tt.text)
		s.Equal(tt.ok, ok, tt.text)
		s.Equal(tt.want, got, tt.text)
	}
}

func (s *DecisionEngineSuite) TestWatchAssetIsIdempotent() {
	e := s.engine(stubScorer{})
	doge := models.NewCryptoAsset("DOGE/USD")

	s.True(e.WatchAsset(doge))
	s.False(e.WatchAsset(doge))
	s.True(e.IsWatching(doge))
	s.Len(e.keywords.Load().crypto, 2)
}

func (s *DecisionEngineSuite) TestConcurrentWatchAndResolve() {
	e := s.engine(stubScorer{})
	var wg sync.WaitGroup
	for _, sym := range []string{"MSFT", "NVDA", "AMD", "INTC"} {
		wg.Add(2)
		go func(sym string) {
			defer wg.Done()
			e.WatchAsset(models.NewStockAsset(sym))
		}(sym)
		go func(sym string) {
			defer wg.Done()
			_, _ = e.Resolve("watching $" + sym)
		}(sym)
	}
	wg.Wait()
	got, ok := e.Resolve("$NVDA earnings")
	s.True(ok)
	s.Equal(models.NewStockAsset("NVDA"), got)
}
