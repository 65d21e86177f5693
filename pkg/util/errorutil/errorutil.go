package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewCapacityExceeded signals an agent already holding maxConcurrentTickets
// active assignments.
func NewCapacityExceeded(agentID string, limit int) error {
	return NewDomainError("CAPACITY_EXCEEDED", "agent at capacity", http.StatusConflict, map[string]any{
		"agent_id":               agentID,
		"max_concurrent_tickets": limit,
	})
}

// NewAlreadyAssigned signals a ticket that already carries an active
// assignment.
func NewAlreadyAssigned(ticketID string) error {
	return NewDomainError("ALREADY_ASSIGNED", "ticket already has an active assignment", http.StatusConflict, map[string]any{
		"ticket_id": ticketID,
	})
}

// NewNoActiveAssignment signals a transfer or close against a ticket with no
// active assignment.
func NewNoActiveAssignment(ticketID string) error {
	return NewDomainError("NO_ACTIVE_ASSIGNMENT", "ticket has no active assignment", http.StatusConflict, map[string]any{
		"ticket_id": ticketID,
	})
}

// NewInvalidTicketState signals an operation against a ticket whose
// lifecycle state does not permit it.
func NewInvalidTicketState(ticketID, state string) error {
	return NewDomainError("INVALID_TICKET_STATE", fmt.Sprintf("ticket state %s does not permit this operation", state), http.StatusConflict, map[string]any{
		"ticket_id": ticketID,
		"state":     state,
	})
}

// NewConfigurationError signals missing or invalid SLA policy/calendar
// configuration. Callers fall closed to conservative defaults.
func NewConfigurationError(message string, err error) error {
	return &DomainError{
		Code:       "CONFIGURATION_ERROR",
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewStorageError wraps persistence failures. Surfaced to callers as a
// generic retryable condition.
func NewStorageError(err error) error {
	return &DomainError{
		Code:       "STORAGE_ERROR",
		Message:    "storage unavailable, retry later",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// MapStorageError wraps err as NewNotFound for missing rows and
// NewStorageError otherwise.
func MapStorageError(err error, resource string) error {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound(resource, nil)
	}
	return NewStorageError(err)
}
