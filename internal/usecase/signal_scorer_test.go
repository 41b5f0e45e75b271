package usecase

import (
	"context"
	"errors"
	"testing"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestSignalScorer(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		conf     float64
		err      error
		wantSig  models.Signal
		wantConf float64
	}{
		{name: "positive", label: "positive", conf: 0.9, wantSig: models.SignalBuy, wantConf: 0.9},
		{name: "negative", label: "negative", conf: 0.75, wantSig: models.SignalSell, wantConf: 0.75},
		{name: "label case", label: " Positive ", conf: 0.8, wantSig: models.SignalBuy, wantConf: 0.8},
		{name: "neutral", label: "neutral", conf: 0.99, wantSig: models.SignalHold, wantConf: 0.99},
		{name: "at threshold", label: "negative", conf: 0.6, wantSig: models.SignalSell, wantConf: 0.6},
		{name: "below threshold keeps confidence", label: "positive", conf: 0.59, wantSig: models.SignalHold, wantConf: 0.59},
		{name: "classifier failure", err: errors.New("model offline"), wantSig: models.SignalHold, wantConf: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			clf := mocks.NewMockSentimentClassifier(ctrl)
			clf.EXPECT().Classify(gomock.Any(), "some text").Return(tt.label, tt.conf, tt.err)

			m := mocks.NewMetrics()
			sig, conf := NewSignalScorer(clf, 0.6, m, nil).Score(context.Background(), "some text")
			assert.Equal(t, tt.wantSig, sig)
			assert.Equal(t, tt.wantConf, conf)
			if tt.err != nil {
				assert.Equal(t, 1, m.Errors("sentiment_classifier"))
			}
		})
	}
}

func TestSignalScorerAssessReportsForcedHold(t *testing.T) {
	tests := []struct {
		name    string
		label   string
		conf    float64
		err     error
		wantErr error
		reason  string
	}{
		{name: "confident", label: "positive", conf: 0.9},
		{name: "neutral is not low confidence", label: "neutral", conf: 0.1},
		{name: "low confidence", label: "negative", conf: 0.45, wantErr: models.ErrLowConfidenceSignal, reason: "low confidence (0.45 < 0.60)"},
		{name: "classifier failure", err: errors.New("model offline"), wantErr: models.ErrCollaboratorFailure, reason: "sentiment_classifier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			clf := mocks.NewMockSentimentClassifier(ctrl)
			clf.EXPECT().Classify(gomock.Any(), "text").Return(tt.label, tt.conf, tt.err)

			ev, err := NewSignalScorer(clf, 0.6, mocks.NewMetrics(), nil).Assess(context.Background(), "text")
			assert.Equal(t, "text", ev.Text)
			assert.True(t, ev.Asset.IsNone())
			if tt.wantErr != nil {
				assert.Equal(t, models.SignalHold, ev.Signal)
			}
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			var de *models.DecisionError
			if assert.ErrorAs(t, err, &de) {
				assert.Equal(t, tt.reason, de.Reason)
			}
		})
	}
}
