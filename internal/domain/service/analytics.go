package service

import "context"

// SentimentClassifier labels free text as positive, negative or neutral.
type SentimentClassifier interface {
	Classify(ctx context.Context, text string) (label string, confidence float64, err error)
}

// TickerExtractor pulls candidate ticker symbols out of free text.
// Candidates are unvalidated; callers check them against venue registries.
type TickerExtractor interface {
	Extract(ctx context.Context, text string) ([]string, error)
}
