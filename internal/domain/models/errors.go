package models

import (
	"errors"
	"fmt"
)

// ErrNoDataAvailable means no entity produced usable data; the run cannot continue.
var ErrNoDataAvailable = errors.New("no data available")

// Reasons an entity can be excluded from a run.
const (
	ReasonTransport        = "transport"
	ReasonMalformedPayload = "malformed_payload"
	ReasonEmptyPayload     = "empty_payload"
	ReasonMissingTimestamp = "missing_timestamp"
	ReasonInvalidRecord    = "invalid_record"
)

// SourceUnavailableError reports a single entity that could not be used.
// It is always recovered locally by excluding the entity.
type SourceUnavailableError struct {
	EntityID string
	Reason   string
	Err      error
}

func (e *SourceUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("entity %s unavailable (%s): %v", e.EntityID, e.Reason, e.Err)
	}
	return fmt.Sprintf("entity %s unavailable (%s)", e.EntityID, e.Reason)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Unavailable builds a SourceUnavailableError.
func Unavailable(entityID, reason string, err error) *SourceUnavailableError {
	return &SourceUnavailableError{EntityID: entityID, Reason: reason, Err: err}
}

// AsUnavailable classifies err for entityID. Errors that are not already a
// SourceUnavailableError are treated as transport failures.
func AsUnavailable(entityID string, err error) *SourceUnavailableError {
	var su *SourceUnavailableError
	if errors.As(err, &su) {
		if su.EntityID == "" {
			su.EntityID = entityID
		}
		return su
	}
	return Unavailable(entityID, ReasonTransport, err)
}

// Diagnostic is the caller-facing record of an excluded entity.
type Diagnostic struct {
	EntityID string `json:"entity_id"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
}

// DiagnosticOf converts an unavailability error to a Diagnostic.
func DiagnosticOf(e *SourceUnavailableError) Diagnostic {
	msg := e.Reason
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return Diagnostic{EntityID: e.EntityID, Reason: e.Reason, Message: msg}
}
