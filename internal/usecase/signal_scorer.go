package usecase

import (
	"context"
	"strings"
	"time"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	dservice "TradePulse/internal/domain/service"
	applogger "TradePulse/pkg/logger"

	"github.com/moznion/go-optional"
)

// Classifier labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// SignalScorer turns classifier output into a trading signal.
type SignalScorer struct {
	classifier dservice.SentimentClassifier
	threshold  float64
	metrics    drepo.Metrics
	logger     *applogger.Logger
}

// NewSignalScorer creates a scorer. Signals below threshold confidence become hold.
func NewSignalScorer(classifier dservice.SentimentClassifier, threshold float64, metrics drepo.Metrics, logger *applogger.Logger) *SignalScorer {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &SignalScorer{classifier: classifier, threshold: threshold, metrics: metrics, logger: logger}
}

// Score classifies text. A classifier failure yields (hold, 0) and is logged,
// never returned.
func (s *SignalScorer) Score(ctx context.Context, text string) (models.Signal, float64) {
	ev, _ := s.Assess(ctx, text)
	return ev.Signal, ev.Confidence
}

// Assess scores text into a SentimentEvent with no asset. err explains a
// forced hold: a low confidence DecisionError when a directional label
// missed the threshold, or a collaborator failure when the classifier failed.
func (s *SignalScorer) Assess(ctx context.Context, text string) (models.SentimentEvent, error) {
	ev := models.SentimentEvent{Text: text, Asset: optional.None[models.Asset](), Signal: models.SignalHold}
	start := time.Now()
	label, confidence, err := s.classifier.Classify(ctx, text)
	s.metrics.RecordLatency("sentiment_classify", time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError("sentiment_classifier")
		s.logger.Warn("sentiment classification failed", applogger.Error(err))
		return ev, models.NewCollaboratorFailure("sentiment_classifier", err)
	}

	ev.Confidence = confidence
	switch strings.ToLower(strings.TrimSpace(label)) {
	case LabelPositive:
		ev.Signal = models.SignalBuy
	case LabelNegative:
		ev.Signal = models.SignalSell
	}
	if ev.Signal != models.SignalHold && confidence < s.threshold {
		s.logger.Debug("signal below confidence threshold",
			applogger.String("label", label),
			applogger.Float64("confidence", confidence))
		ev.Signal = models.SignalHold
		return ev, models.NewLowConfidence(confidence, s.threshold)
	}
	return ev, nil
}
