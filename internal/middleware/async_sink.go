package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TradePulse/internal/domain/models"
	domrepo "TradePulse/internal/domain/repository"
	applogger "TradePulse/pkg/logger"
)

// BatchWriter persists batches of audit records and indicator snapshots.
type BatchWriter interface {
	Name() string
	WriteAudits(ctx context.Context, recs []models.AuditRecord) error
	WriteSnapshots(ctx context.Context, snaps []models.IndicatorSnapshot) error
}

// SinkOption configures AsyncSink.
type SinkOption func(*AsyncSink)

// WithSinkQueueSize sets the bounded queue length.
func WithSinkQueueSize(n int) SinkOption {
	return func(s *AsyncSink) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithSinkBatch sets the batch size and the flush interval.
func WithSinkBatch(size int, interval time.Duration) SinkOption {
	return func(s *AsyncSink) {
		if size > 0 {
			s.batchSize = size
		}
		if interval > 0 {
			s.interval = interval
		}
	}
}

// WithSinkLogger sets the logger.
func WithSinkLogger(l *applogger.Logger) SinkOption {
	return func(s *AsyncSink) {
		if l != nil {
			s.logger = l
		}
	}
}

type sinkItem struct {
	audit *models.AuditRecord
	snap  *models.IndicatorSnapshot
}

// AsyncSink decouples the decision and indicator paths from storage. Record
// and RecordSnapshot only enqueue; a background worker batches and writes to
// every backend. A full queue drops the newest item.
type AsyncSink struct {
	writers   []BatchWriter
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	queueSize int
	batchSize int
	interval  time.Duration

	queue   chan sinkItem
	mu      sync.RWMutex
	started bool
	closed  bool
	done    chan struct{}
}

// NewAsyncSink creates a sink writing to writers.
func NewAsyncSink(writers []BatchWriter, metrics domrepo.Metrics, opts ...SinkOption) *AsyncSink {
	s := &AsyncSink{
		writers:   writers,
		metrics:   metrics,
		logger:    applogger.Nop(),
		queueSize: 4096,
		batchSize: 200,
		interval:  2 * time.Second,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan sinkItem, s.queueSize)
	return s
}

// Record enqueues an audit record.
func (s *AsyncSink) Record(_ context.Context, rec models.AuditRecord) error {
	return s.enqueue(sinkItem{audit: &rec}, "audit")
}

// RecordSnapshot enqueues an indicator snapshot.
func (s *AsyncSink) RecordSnapshot(_ context.Context, snap models.IndicatorSnapshot) error {
	return s.enqueue(sinkItem{snap: &snap}, "snapshot")
}

func (s *AsyncSink) enqueue(it sinkItem, stage string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return models.ErrQueueClosed
	}
	select {
	case s.queue <- it:
		return nil
	default:
		s.metrics.RecordDropped("sink_" + stage)
		return models.ErrQueueFull
	}
}

// Start launches the batching worker.
func (s *AsyncSink) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	go s.run(context.WithoutCancel(ctx))
}

// Stop closes the queue and waits for the final flush until ctx is done.
func (s *AsyncSink) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	started := s.started
	s.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sink drain: %w", ctx.Err())
	}
}

func (s *AsyncSink) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var audits []models.AuditRecord
	var snaps []models.IndicatorSnapshot
	flush := func() {
		if len(audits) == 0 && len(snaps) == 0 {
			return
		}
		s.flush(ctx, audits, snaps)
		audits, snaps = nil, nil
	}

	for {
		select {
		case it, ok := <-s.queue:
			if !ok {
				flush()
				return
			}
			if it.audit != nil {
				audits = append(audits, *it.audit)
			}
			if it.snap != nil {
				snaps = append(snaps, *it.snap)
			}
			if len(audits)+len(snaps) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *AsyncSink) flush(ctx context.Context, audits []models.AuditRecord, snaps []models.IndicatorSnapshot) {
	for _, w := range s.writers {
		start := time.Now()
		if len(audits) > 0 {
			if err := w.WriteAudits(ctx, audits); err != nil {
				s.metrics.RecordError("sink_" + w.Name())
				s.logger.Warn("audit batch not written",
					applogger.String("backend", w.Name()),
					applogger.Int("records", len(audits)),
					applogger.Error(err))
			}
		}
		if len(snaps) > 0 {
			if err := w.WriteSnapshots(ctx, snaps); err != nil {
				s.metrics.RecordError("sink_" + w.Name())
				s.logger.Warn("snapshot batch not written",
					applogger.String("backend", w.Name()),
					applogger.Int("snapshots", len(snaps)),
					applogger.Error(err))
			}
		}
		s.metrics.RecordLatency("sink_flush_"+w.Name(), time.Since(start).Seconds())
	}
}

var (
	_ domrepo.AuditSink    = (*AsyncSink)(nil)
	_ domrepo.SnapshotSink = (*AsyncSink)(nil)
)
