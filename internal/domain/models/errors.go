package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidObservation   = errors.New("invalid observation")
	ErrInvalidEvent         = errors.New("invalid event")
	ErrInsufficientHistory  = errors.New("insufficient history")
	ErrUnresolvedAsset      = errors.New("unresolved asset")
	ErrLowConfidenceSignal  = errors.New("low confidence signal")
	ErrConfirmationRejected = errors.New("confirmation rejected")
	ErrCollaboratorFailure  = errors.New("collaborator failure")

	// Router and sink backpressure.
	ErrQueueFull   = errors.New("queue full")
	ErrQueueClosed = errors.New("queue closed")
	ErrThrottled   = errors.New("throttled")
)

// Error codes carried by DecisionError.
const (
	CodeInvalidObservation   = "ERR_INVALID_OBSERVATION"
	CodeUnresolvedAsset      = "ERR_UNRESOLVED_ASSET"
	CodeInsufficientHistory  = "ERR_INSUFFICIENT_HISTORY"
	CodeLowConfidenceSignal  = "ERR_LOW_CONFIDENCE_SIGNAL"
	CodeConfirmationRejected = "ERR_CONFIRMATION_REJECTED"
	CodeCollaboratorFailure  = "ERR_COLLABORATOR_FAILURE"
)

// DecisionError classifies a failed or rejected pipeline step.
// Err is one of the sentinel errors above, optionally wrapping a cause.
type DecisionError struct {
	Code   string
	Reason string
	Err    error
}

func (e *DecisionError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Reason)
	default:
		return e.Code
	}
}

func (e *DecisionError) Unwrap() error { return e.Err }

// NewRejection returns a ConfirmationRejected error with a human readable reason.
func NewRejection(reason string) *DecisionError {
	return &DecisionError{Code: CodeConfirmationRejected, Reason: reason, Err: ErrConfirmationRejected}
}

// NewLowConfidence reports a directional label held back by the confidence
// threshold.
func NewLowConfidence(confidence, threshold float64) *DecisionError {
	return &DecisionError{
		Code:   CodeLowConfidenceSignal,
		Reason: fmt.Sprintf("low confidence (%.2f < %.2f)", confidence, threshold),
		Err:    ErrLowConfidenceSignal,
	}
}

// NewUnresolved reports text that names no watched asset.
func NewUnresolved() *DecisionError {
	return &DecisionError{Code: CodeUnresolvedAsset, Err: ErrUnresolvedAsset}
}

// NewCollaboratorFailure wraps a failing external call.
func NewCollaboratorFailure(collaborator string, cause error) *DecisionError {
	return &DecisionError{
		Code:   CodeCollaboratorFailure,
		Reason: collaborator,
		Err:    fmt.Errorf("%w: %w", ErrCollaboratorFailure, cause),
	}
}

// InvalidObservation wraps ErrInvalidObservation with detail.
func InvalidObservation(format string, args ...interface{}) error {
	return &DecisionError{
		Code:   CodeInvalidObservation,
		Reason: fmt.Sprintf(format, args...),
		Err:    ErrInvalidObservation,
	}
}
