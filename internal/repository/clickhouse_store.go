package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moznion/go-optional"

	"TradePulse/internal/domain/models"
	"TradePulse/internal/middleware"
	pkgch "TradePulse/pkg/clickhouse"
	applogger "TradePulse/pkg/logger"
)

const chChunkSize = 2000

// ClickHouseSchema creates the snapshot and audit tables.
func ClickHouseSchema(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.indicator_snapshots (
    computed_at     DateTime64(3, 'UTC'),
    asset           LowCardinality(String),
    asset_class     LowCardinality(String),
    last_price      Float64,
    samples         UInt32,
    rsi             Nullable(Float64),
    sma_short       Nullable(Float64),
    sma_long        Nullable(Float64),
    bollinger_upper Nullable(Float64),
    bollinger_lower Nullable(Float64),
    volatility      Nullable(Float64)
) ENGINE = MergeTree
PARTITION BY toYYYYMMDD(computed_at)
ORDER BY (asset, computed_at)
TTL toDateTime(computed_at) + INTERVAL 30 DAY`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.decision_audit (
    recorded_at    DateTime64(3, 'UTC'),
    correlation_id String,
    asset          LowCardinality(String),
    asset_class    LowCardinality(String),
    signal         LowCardinality(String),
    confidence     Float64,
    outcome        LowCardinality(String),
    reason         String,
    intent_id      String,
    quantity       Float64,
    price          Float64
) ENGINE = MergeTree
PARTITION BY toYYYYMMDD(recorded_at)
ORDER BY (asset, recorded_at)`, database),
	}
}

type chExecer interface {
	Exec(ctx context.Context, query string, args ...any) error
}

// ClickHouseStore writes snapshots and decision audits to ClickHouse.
type ClickHouseStore struct {
	conn     chExecer
	database string
	l        *applogger.Logger
}

// NewClickHouseStore creates a store on an open client.
func NewClickHouseStore(ch *pkgch.Client, l *applogger.Logger) *ClickHouseStore {
	return newClickHouseStore(ch.Conn(), ch.Database(), l)
}

func newClickHouseStore(conn chExecer, database string, l *applogger.Logger) *ClickHouseStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHouseStore{conn: conn, database: database, l: l}
}

// Name identifies the backend in sink logs.
func (s *ClickHouseStore) Name() string { return "clickhouse" }

// WriteSnapshots inserts snapshots in chunks of multi-row VALUES.
func (s *ClickHouseStore) WriteSnapshots(ctx context.Context, snaps []models.IndicatorSnapshot) error {
	rows := make([][]any, 0, len(snaps))
	for _, snap := range snaps {
		if snap.Asset.IsZero() {
			continue
		}
		rows = append(rows, snapshotRow(snap))
	}
	return s.insert(ctx, "indicator_snapshots", snapshotColumns, rows)
}

// WriteAudits inserts decision audit records.
func (s *ClickHouseStore) WriteAudits(ctx context.Context, recs []models.AuditRecord) error {
	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, auditRow(rec))
	}
	return s.insert(ctx, "decision_audit", auditColumns, rows)
}

func (s *ClickHouseStore) insert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	start := time.Now()
	target := s.database + "." + table
	for from := 0; from < len(rows); from += chChunkSize {
		to := from + chChunkSize
		if to > len(rows) {
			to = len(rows)
		}
		q, args := buildInsert(target, columns, rows[from:to])
		if err := s.conn.Exec(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", target),
				applogger.Int("rows", to-from),
				applogger.Error(err))
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	s.l.Debug("clickhouse insert ok",
		applogger.String("table", target),
		applogger.Int("rows", len(rows)),
		applogger.Duration("duration_ms", time.Since(start)))
	return nil
}

var snapshotColumns = []string{
	"computed_at", "asset", "asset_class", "last_price", "samples",
	"rsi", "sma_short", "sma_long", "bollinger_upper", "bollinger_lower", "volatility",
}

var auditColumns = []string{
	"recorded_at", "correlation_id", "asset", "asset_class", "signal", "confidence",
	"outcome", "reason", "intent_id", "quantity", "price",
}

func snapshotRow(s models.IndicatorSnapshot) []any {
	return []any{
		s.ComputedAt.UTC(),
		s.Asset.Symbol,
		s.Asset.Class.String(),
		s.LastPrice,
		uint32(s.Samples),
		optPtr(s.RSI),
		optPtr(s.SMAShort),
		optPtr(s.SMALong),
		optPtr(s.BollingerUpper),
		optPtr(s.BollingerLower),
		optPtr(s.Volatility),
	}
}

func auditRow(r models.AuditRecord) []any {
	return []any{
		r.RecordedAt.UTC(),
		r.CorrelationID,
		r.Asset,
		r.AssetClass.String(),
		r.Signal.String(),
		r.Confidence,
		string(r.Outcome),
		r.Reason,
		r.IntentID,
		r.Quantity,
		r.Price,
	}
}

// buildInsert renders one multi-row INSERT with positional placeholders.
func buildInsert(table string, columns []string, rows [][]any) (string, []any) {
	ph := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		values[i] = ph
		args = append(args, row...)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table, strings.Join(columns, ", "), strings.Join(values, ","))
	return q, args
}

func optPtr(o optional.Option[float64]) *float64 {
	if o.IsNone() {
		return nil
	}
	v := o.Unwrap()
	return &v
}

var _ middleware.BatchWriter = (*ClickHouseStore)(nil)
