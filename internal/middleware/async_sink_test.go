package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	mu     sync.Mutex
	audits []models.AuditRecord
	snaps  []models.IndicatorSnapshot
	fail   error
}

func (w *memoryWriter) Name() string { return "memory" }

func (w *memoryWriter) WriteAudits(_ context.Context, recs []models.AuditRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	w.audits = append(w.audits, recs...)
	return nil
}

func (w *memoryWriter) WriteSnapshots(_ context.Context, snaps []models.IndicatorSnapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	w.snaps = append(w.snaps, snaps...)
	return nil
}

func TestAsyncSinkFlushesOnStop(t *testing.T) {
	w := &memoryWriter{}
	s := NewAsyncSink([]BatchWriter{w}, mocks.NewMetrics(), WithSinkBatch(100, time.Hour))
	s.Start(context.Background())

	require.NoError(t, s.Record(context.Background(), models.AuditRecord{CorrelationID: "a", Outcome: models.OutcomeHold}))
	require.NoError(t, s.RecordSnapshot(context.Background(), models.IndicatorSnapshot{Asset: models.NewStockAsset("AAPL")}))
	require.NoError(t, s.Stop(context.Background()))

	assert.Len(t, w.audits, 1)
	assert.Len(t, w.snaps, 1)
	assert.ErrorIs(t, s.Record(context.Background(), models.AuditRecord{}), models.ErrQueueClosed)
}

func TestAsyncSinkFlushesFullBatch(t *testing.T) {
	w := &memoryWriter{}
	s := NewAsyncSink([]BatchWriter{w}, mocks.NewMetrics(), WithSinkBatch(2, time.Hour))
	s.Start(context.Background())
	defer s.Stop(context.Background())

	require.NoError(t, s.Record(context.Background(), models.AuditRecord{CorrelationID: "a"}))
	require.NoError(t, s.Record(context.Background(), models.AuditRecord{CorrelationID: "b"}))

	assert.Eventually(t, func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return len(w.audits) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestAsyncSinkDropsNewestWhenFull(t *testing.T) {
	m := mocks.NewMetrics()
	s := NewAsyncSink(nil, m, WithSinkQueueSize(1))

	require.NoError(t, s.Record(context.Background(), models.AuditRecord{}))
	assert.ErrorIs(t, s.Record(context.Background(), models.AuditRecord{}), models.ErrQueueFull)
	assert.Equal(t, 1, m.Dropped("sink_audit"))
}

func TestAsyncSinkCountsBackendFailures(t *testing.T) {
	m := mocks.NewMetrics()
	w := &memoryWriter{fail: errors.New("clickhouse down")}
	s := NewAsyncSink([]BatchWriter{w}, m)
	s.Start(context.Background())

	require.NoError(t, s.Record(context.Background(), models.AuditRecord{}))
	require.NoError(t, s.Stop(context.Background()))
	assert.Equal(t, 1, m.Errors("sink_memory"))
}
