package orderqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
	"TradePulse/pkg/queue"
)

// JobType is the queue message type of an order intent.
const JobType = "order_submit"

// Dispatcher enqueues intents for Job to execute.
type Dispatcher struct {
	publisher queue.Publisher
}

// NewDispatcher creates a queueing dispatcher.
func NewDispatcher(publisher queue.Publisher) *Dispatcher {
	return &Dispatcher{publisher: publisher}
}

func (d *Dispatcher) Submit(ctx context.Context, intent models.OrderIntent) error {
	if err := d.publisher.Enqueue(ctx, JobType, intent); err != nil {
		return fmt.Errorf("enqueue order %s: %w", intent.ID, err)
	}
	return nil
}

// Job executes queued intents on the venue of their asset class.
type Job struct {
	venues  map[models.AssetClass]drepo.OrderDispatcher
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// NewJob creates the consumer side. venues maps each class to its venue.
func NewJob(venues map[models.AssetClass]drepo.OrderDispatcher, metrics drepo.Metrics, logger *applogger.Logger) *Job {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &Job{venues: venues, metrics: metrics, logger: logger}
}

func (j *Job) Name() string { return "order-submit" }
func (j *Job) Type() string { return JobType }

// Handle submits the intent. Malformed payloads and unknown classes are
// permanent failures; venue errors are retried by the queue.
func (j *Job) Handle(ctx context.Context, payload json.RawMessage) error {
	intent, err := queue.ParsePayload[models.OrderIntent](payload)
	if err != nil {
		return fmt.Errorf("%w: %v", queue.ErrPermanent, err)
	}
	venue, ok := j.venues[intent.Asset.Class]
	if !ok {
		return fmt.Errorf("%w: no venue for %s", queue.ErrPermanent, intent.Asset.Class)
	}
	if err := venue.Submit(ctx, *intent); err != nil {
		j.metrics.RecordError("order_venue")
		return fmt.Errorf("submit %s: %w", intent.ID, err)
	}
	j.metrics.RecordMessageSent("order_queue", intent.Asset.Symbol)
	j.logger.Info("queued order executed",
		applogger.String("intent_id", intent.ID),
		applogger.String("asset", intent.Asset.Symbol))
	return nil
}

var (
	_ drepo.OrderDispatcher = (*Dispatcher)(nil)
	_ queue.Job             = (*Job)(nil)
)
