package repository

import (
	"context"
	"fmt"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/middleware"
	pkgkafka "TradePulse/pkg/kafka"
)

const (
	TopicDecisionAudit = "decision-audit"
	TopicOrderIntents  = "order-intents"
)

// KafkaBatchPublisher is the part of pkg/kafka.Producer the publishers use.
type KafkaBatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, messages []pkgkafka.Message) error
}

// KafkaAuditWriter streams audits and snapshots to one topic. The "kind"
// header tells consumers which payload they hold.
type KafkaAuditWriter struct {
	producer KafkaBatchPublisher
	topic    string
}

// NewKafkaAuditWriter creates a writer. An empty topic means decision-audit.
func NewKafkaAuditWriter(producer KafkaBatchPublisher, topic string) *KafkaAuditWriter {
	if topic == "" {
		topic = TopicDecisionAudit
	}
	return &KafkaAuditWriter{producer: producer, topic: topic}
}

// Name identifies the backend in sink logs.
func (w *KafkaAuditWriter) Name() string { return "kafka" }

// WriteAudits publishes one message per record keyed by asset.
func (w *KafkaAuditWriter) WriteAudits(ctx context.Context, recs []models.AuditRecord) error {
	if len(recs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(recs))
	for i, rec := range recs {
		msgs[i] = pkgkafka.Message{
			Key:     []byte(string(rec.AssetClass) + ":" + rec.Asset),
			Value:   rec,
			Headers: map[string]string{"kind": "audit", "outcome": string(rec.Outcome)},
		}
	}
	return w.producer.PublishBatch(ctx, w.topic, msgs)
}

// WriteSnapshots publishes one message per snapshot keyed by asset.
func (w *KafkaAuditWriter) WriteSnapshots(ctx context.Context, snaps []models.IndicatorSnapshot) error {
	msgs := make([]pkgkafka.Message, 0, len(snaps))
	for _, s := range snaps {
		if s.Asset.IsZero() {
			continue
		}
		msgs = append(msgs, pkgkafka.Message{
			Key:     []byte(s.Asset.Key()),
			Value:   s,
			Headers: map[string]string{"kind": "snapshot"},
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	return w.producer.PublishBatch(ctx, w.topic, msgs)
}

// KafkaIntentPublisher hands order intents to an external executor through
// Kafka instead of trading directly.
type KafkaIntentPublisher struct {
	producer KafkaBatchPublisher
	topic    string
}

// NewKafkaIntentPublisher creates a publisher. An empty topic means
// order-intents.
func NewKafkaIntentPublisher(producer KafkaBatchPublisher, topic string) *KafkaIntentPublisher {
	if topic == "" {
		topic = TopicOrderIntents
	}
	return &KafkaIntentPublisher{producer: producer, topic: topic}
}

// Submit publishes intent keyed by asset so one asset's intents stay ordered.
func (p *KafkaIntentPublisher) Submit(ctx context.Context, intent models.OrderIntent) error {
	msg := pkgkafka.Message{
		Key:   []byte(intent.Asset.Key()),
		Value: intent,
		Headers: map[string]string{
			"correlation_id": intent.CorrelationID,
			"side":           string(intent.Side),
		},
	}
	if err := p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{msg}); err != nil {
		return fmt.Errorf("publish intent %s: %w", intent.ID, err)
	}
	return nil
}

var (
	_ middleware.BatchWriter = (*KafkaAuditWriter)(nil)
	_ drepo.OrderDispatcher  = (*KafkaIntentPublisher)(nil)
	_ KafkaBatchPublisher    = (*pkgkafka.Producer)(nil)
)
