package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Publisher enqueues messages for asynchronous handling.
type Publisher interface {
	Enqueue(ctx context.Context, msgType string, payload interface{}) error
}

// Config contains the configuration for the queue.
type Config struct {
	Workers     int           // number of workers
	RetryLimit  int           // number of maximum retries
	RetryDelay  time.Duration // time delay between retries
	PollTimeout time.Duration // blocking pop timeout
}

// Message is the envelope stored in Redis.
type Message struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	LastError  string          `json:"last_error,omitempty"`
}

// ParsePayload decodes a message payload into T.
func ParsePayload[T any](payload json.RawMessage) (*T, error) {
	var result T
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &result, nil
}

// ErrPermanent marks handler failures that must not be retried.
var ErrPermanent = errors.New("permanent job failure")

// Outcome is what happens to a message after one handling attempt.
type Outcome int

const (
	OutcomeDone Outcome = iota
	OutcomeRetry
	OutcomeDead
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRetry:
		return "retry"
	case OutcomeDead:
		return "dead"
	default:
		return "done"
	}
}

// decide runs the job for msg and updates its attempt counter.
func decide(ctx context.Context, job Job, msg *Message, retryLimit int) (Outcome, error) {
	if job == nil {
		return OutcomeDead, fmt.Errorf("no job registered for type %q", msg.Type)
	}
	err := job.Handle(ctx, msg.Payload)
	if err == nil {
		return OutcomeDone, nil
	}
	msg.LastError = err.Error()
	if errors.Is(err, context.Canceled) {
		// interrupted by shutdown, not by the job
		return OutcomeRetry, err
	}
	if errors.Is(err, ErrPermanent) || msg.Attempts >= retryLimit {
		return OutcomeDead, err
	}
	msg.Attempts++
	return OutcomeRetry, err
}
