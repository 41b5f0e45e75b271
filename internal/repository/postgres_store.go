package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"TradePulse/internal/domain/models"
	drepo "TradePulse/internal/domain/repository"
	"TradePulse/internal/middleware"
	applogger "TradePulse/pkg/logger"
)

const pgBatchSize = 500

// IndicatorRow is one row of technical_indicators.
type IndicatorRow struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement"`
	Asset          string  `gorm:"size:32;index:idx_indicators_asset_time,priority:1;not null"`
	AssetClass     string  `gorm:"size:16;not null"`
	LastPrice      float64 `gorm:"not null"`
	Samples        int     `gorm:"not null"`
	RSI            *float64
	SMAShort       *float64
	SMALong        *float64
	BollingerUpper *float64
	BollingerLower *float64
	Volatility     *float64
	ComputedAt     time.Time `gorm:"index:idx_indicators_asset_time,priority:2;not null"`
}

func (IndicatorRow) TableName() string { return "technical_indicators" }

// AuditRow is one row of decision_audits.
type AuditRow struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	CorrelationID string `gorm:"size:64;index"`
	Asset         string `gorm:"size:32;index"`
	AssetClass    string `gorm:"size:16"`
	Signal        string `gorm:"size:8"`
	Confidence    float64
	Outcome       string `gorm:"size:32;index"`
	Reason        string
	IntentID      string `gorm:"size:64"`
	Quantity      float64
	Price         float64
	RecordedAt    time.Time `gorm:"index;not null"`
}

func (AuditRow) TableName() string { return "decision_audits" }

// TradeRow is one paper fill in paper_trades.
type TradeRow struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	IntentID   string `gorm:"size:64;uniqueIndex"`
	Asset      string `gorm:"size:32;index"`
	AssetClass string `gorm:"size:16"`
	Side       string `gorm:"size:8"`
	Quantity   float64
	Price      float64
	Notional   float64
	Venue      string    `gorm:"size:32"`
	FilledAt   time.Time `gorm:"index;not null"`
}

func (TradeRow) TableName() string { return "paper_trades" }

// PostgresStore persists snapshots, audits and paper fills through gorm.
type PostgresStore struct {
	db *gorm.DB
	l  *applogger.Logger
}

// NewPostgresStore creates a store. Call Migrate before the first write.
func NewPostgresStore(db *gorm.DB, l *applogger.Logger) *PostgresStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &PostgresStore{db: db, l: l}
}

// Migrate creates or updates the tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&IndicatorRow{}, &AuditRow{}, &TradeRow{}); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Name identifies the backend in sink logs.
func (s *PostgresStore) Name() string { return "postgres" }

// WriteSnapshots inserts snapshot rows.
func (s *PostgresStore) WriteSnapshots(ctx context.Context, snaps []models.IndicatorSnapshot) error {
	rows := make([]IndicatorRow, 0, len(snaps))
	for _, snap := range snaps {
		if snap.Asset.IsZero() {
			continue
		}
		rows = append(rows, indicatorRowFrom(snap))
	}
	if len(rows) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, pgBatchSize).Error; err != nil {
		s.l.Error("postgres snapshot insert failed", applogger.Int("rows", len(rows)), applogger.Error(err))
		return fmt.Errorf("insert technical_indicators: %w", err)
	}
	return nil
}

// WriteAudits inserts audit rows.
func (s *PostgresStore) WriteAudits(ctx context.Context, recs []models.AuditRecord) error {
	if len(recs) == 0 {
		return nil
	}
	rows := make([]AuditRow, len(recs))
	for i, rec := range recs {
		rows[i] = auditRowFrom(rec)
	}
	if err := s.db.WithContext(ctx).CreateInBatches(rows, pgBatchSize).Error; err != nil {
		s.l.Error("postgres audit insert failed", applogger.Int("rows", len(rows)), applogger.Error(err))
		return fmt.Errorf("insert decision_audits: %w", err)
	}
	return nil
}

// RecordFill stores one executed paper trade.
func (s *PostgresStore) RecordFill(ctx context.Context, fill models.Fill) error {
	row := tradeRowFrom(fill)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert paper_trades: %w", err)
	}
	return nil
}

func indicatorRowFrom(s models.IndicatorSnapshot) IndicatorRow {
	return IndicatorRow{
		Asset:          s.Asset.Symbol,
		AssetClass:     s.Asset.Class.String(),
		LastPrice:      s.LastPrice,
		Samples:        s.Samples,
		RSI:            optPtr(s.RSI),
		SMAShort:       optPtr(s.SMAShort),
		SMALong:        optPtr(s.SMALong),
		BollingerUpper: optPtr(s.BollingerUpper),
		BollingerLower: optPtr(s.BollingerLower),
		Volatility:     optPtr(s.Volatility),
		ComputedAt:     s.ComputedAt.UTC(),
	}
}

func auditRowFrom(r models.AuditRecord) AuditRow {
	return AuditRow{
		CorrelationID: r.CorrelationID,
		Asset:         r.Asset,
		AssetClass:    r.AssetClass.String(),
		Signal:        r.Signal.String(),
		Confidence:    r.Confidence,
		Outcome:       string(r.Outcome),
		Reason:        r.Reason,
		IntentID:      r.IntentID,
		Quantity:      r.Quantity,
		Price:         r.Price,
		RecordedAt:    r.RecordedAt.UTC(),
	}
}

func tradeRowFrom(f models.Fill) TradeRow {
	return TradeRow{
		IntentID:   f.IntentID,
		Asset:      f.Asset.Symbol,
		AssetClass: f.Asset.Class.String(),
		Side:       string(f.Side),
		Quantity:   f.Quantity,
		Price:      f.Price,
		Notional:   f.Notional,
		Venue:      f.Venue,
		FilledAt:   f.FilledAt.UTC(),
	}
}

var (
	_ middleware.BatchWriter = (*PostgresStore)(nil)
	_ drepo.FillRecorder     = (*PostgresStore)(nil)
)
