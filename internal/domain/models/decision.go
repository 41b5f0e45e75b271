package models

import (
	"errors"
	"time"
)

// Outcome is the terminal state of one text event in the decision pipeline.
type Outcome string

const (
	OutcomeUnresolved     Outcome = "unresolved"
	OutcomeHold           Outcome = "hold"
	OutcomeUnconfirmable  Outcome = "unconfirmable"
	OutcomeRejected       Outcome = "rejected"
	OutcomeConfirmed      Outcome = "confirmed"
	OutcomeDispatchFailed Outcome = "dispatch_failed"
)

// Decision is the result of evaluating a single text event.
type Decision struct {
	CorrelationID string
	Asset         Asset
	Signal        Signal
	Confidence    float64
	Outcome       Outcome
	Reason        string
	Intent        *OrderIntent
	Err           error
}

// Is reports whether the decision failed with target.
func (d Decision) Is(target error) bool {
	return d.Err != nil && errors.Is(d.Err, target)
}

// AuditRecord is the persisted trace of a decision.
type AuditRecord struct {
	CorrelationID string     `json:"correlation_id"`
	Asset         string     `json:"asset"`
	AssetClass    AssetClass `json:"asset_class"`
	Signal        Signal     `json:"signal"`
	Confidence    float64    `json:"confidence"`
	Outcome       Outcome    `json:"outcome"`
	Reason        string     `json:"reason,omitempty"`
	IntentID      string     `json:"intent_id,omitempty"`
	Quantity      float64    `json:"quantity,omitempty"`
	Price         float64    `json:"price,omitempty"`
	RecordedAt    time.Time  `json:"recorded_at"`
}

// AuditRecordFrom flattens a decision for persistence.
func AuditRecordFrom(d Decision, at time.Time) AuditRecord {
	rec := AuditRecord{
		CorrelationID: d.CorrelationID,
		Asset:         d.Asset.Symbol,
		AssetClass:    d.Asset.Class,
		Signal:        d.Signal,
		Confidence:    d.Confidence,
		Outcome:       d.Outcome,
		Reason:        d.Reason,
		RecordedAt:    at,
	}
	if d.Intent != nil {
		rec.IntentID = d.Intent.ID
		rec.Quantity = d.Intent.Quantity
		rec.Price = d.Intent.ReferencePrice
	}
	return rec
}
