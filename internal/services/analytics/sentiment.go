package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	dservice "TradePulse/internal/domain/service"
)

// HTTPSentimentClassifier calls the model service's financial sentiment
// endpoint.
type HTTPSentimentClassifier struct {
	base     *HTTPServiceBase
	attempts int
}

// NewHTTPSentimentClassifier creates a classifier for the service at baseURL.
func NewHTTPSentimentClassifier(baseURL string, timeout time.Duration, attempts int) *HTTPSentimentClassifier {
	return &HTTPSentimentClassifier{base: NewHTTPServiceBase(baseURL, timeout), attempts: attempts}
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify returns the lower-cased label and its confidence.
func (c *HTTPSentimentClassifier) Classify(ctx context.Context, text string) (string, float64, error) {
	var resp sentimentResponse
	if err := c.base.PostJSONWithRetry(ctx, "/sentiment/classify", sentimentRequest{Text: text}, &resp, c.attempts); err != nil {
		return "", 0, fmt.Errorf("classify sentiment: %w", err)
	}
	label := strings.ToLower(strings.TrimSpace(resp.Label))
	if label == "" {
		return "", 0, fmt.Errorf("classify sentiment: empty label")
	}
	return label, resp.Confidence, nil
}

var _ dservice.SentimentClassifier = (*HTTPSentimentClassifier)(nil)
