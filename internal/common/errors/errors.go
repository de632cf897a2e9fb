// Package errors provides standardized error handling for the query engine.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Parse / dispatch errors
	ErrCodeParseAmbiguous    ErrorCode = "PARSE_AMBIGUOUS"
	ErrCodeContractViolation ErrorCode = "CONTRACT_VIOLATION"

	// Handler-level recoverable errors
	ErrCodeEntityMissingOrInvalid  ErrorCode = "ENTITY_MISSING_OR_INVALID"
	ErrCodeCollaboratorUnavailable ErrorCode = "COLLABORATOR_UNAVAILABLE"
	ErrCodeNoQualifyingData        ErrorCode = "NO_QUALIFYING_DATA"

	// Data-access errors
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeReferenceDataUnavailable ErrorCode = "REFERENCE_DATA_UNAVAILABLE"

	// Transport errors
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewParseAmbiguousError marks a query whose confidence fell below the floor.
// Not retryable: rephrasing, not retrying, is the recovery path.
func NewParseAmbiguousError(query string, confidence float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseAmbiguous,
		Message:   "Query could not be classified with sufficient confidence",
		Details:   fmt.Sprintf("query: %q, confidence: %.2f", query, confidence),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEntityMissingError creates a non-retryable missing-entity error.
func NewEntityMissingError(entity, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityMissingOrInvalid,
		Message:   fmt.Sprintf("Required entity %q was not found in the query", entity),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollaboratorUnavailableError creates a retryable collaborator error.
func NewCollaboratorUnavailableError(collaborator string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeCollaboratorUnavailable,
		Message:   fmt.Sprintf("Collaborator %q is unavailable", collaborator),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoQualifyingDataError marks an empty result set that cannot satisfy the query.
func NewNoQualifyingDataError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoQualifyingData,
		Message:   "No qualifying data found for this query",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewContractViolationError marks a handler that produced a malformed envelope.
func NewContractViolationError(handlerName, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeContractViolation,
		Message:   fmt.Sprintf("Handler %q violated the result contract", handlerName),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Data-access query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Data-access query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReferenceDataUnavailableError creates a retryable reference-data error.
func NewReferenceDataUnavailableError(boundaryType string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeReferenceDataUnavailable,
		Message:   fmt.Sprintf("Reference data for boundary type %q unavailable", boundaryType),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsRetryable reports whether err is a StandardError flagged retryable.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or ErrCodeInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}
