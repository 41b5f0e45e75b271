package usecase

import "TradePulse/internal/domain/models"

// SnapshotReader exposes the latest indicator snapshot of an asset.
type SnapshotReader interface {
	GetSnapshot(asset models.Asset) (models.IndicatorSnapshot, bool)
}

// RiskSizer picks the USD notional of a trade. A trending market (short and
// long SMA apart) gets the trend size, anything else the base size.
type RiskSizer struct {
	snapshots SnapshotReader
	base      float64
	trend     float64
}

// NewRiskSizer creates a sizer with base and trend notionals in USD.
func NewRiskSizer(snapshots SnapshotReader, base, trend float64) *RiskSizer {
	return &RiskSizer{snapshots: snapshots, base: base, trend: trend}
}

// TradeVolumeUSD returns the notional for asset.
func (r *RiskSizer) TradeVolumeUSD(asset models.Asset) float64 {
	snap, ok := r.snapshots.GetSnapshot(asset)
	if !ok {
		return r.base
	}
	return r.SizeFor(snap)
}

// SizeFor applies the sizing rule to a given snapshot.
func (r *RiskSizer) SizeFor(snap models.IndicatorSnapshot) float64 {
	if snap.TrendDiverges() {
		return r.trend
	}
	return r.base
}
