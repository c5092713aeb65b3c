package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes reported to callers.
const (
	CodeTicketNotFound      = "TICKET_NOT_FOUND"
	CodeCustomerNotFound    = "CUSTOMER_NOT_FOUND"
	CodeNoEligibleEmployee  = "NO_ELIGIBLE_EMPLOYEE"
	CodeDuplicateTicket     = "DUPLICATE_TICKET"
	CodeInvalidTicketStatus = "INVALID_TICKET_STATUS"
	CodeMissingCustomer     = "MISSING_CUSTOMER"
	CodeInvalidArgument     = "INVALID_ARGUMENT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeInternal            = "INTERNAL_ERROR"
)

// Sentinels usable with errors.Is; matching is by Code.
var (
	ErrTicketNotFound      = &DomainError{Code: CodeTicketNotFound}
	ErrCustomerNotFound    = &DomainError{Code: CodeCustomerNotFound}
	ErrNoEligibleEmployee  = &DomainError{Code: CodeNoEligibleEmployee}
	ErrDuplicateTicket     = &DomainError{Code: CodeDuplicateTicket}
	ErrInvalidTicketStatus = &DomainError{Code: CodeInvalidTicketStatus}
	ErrMissingCustomer     = &DomainError{Code: CodeMissingCustomer}
	ErrInvalidArgument     = &DomainError{Code: CodeInvalidArgument}
	ErrInternal            = &DomainError{Code: CodeInternal}
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

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewTicketNotFound reports an unknown ticket id.
func NewTicketNotFound(ticketID string) error {
	return NewDomainError(CodeTicketNotFound, "Ticket Not Found with ID: "+ticketID, http.StatusNotFound,
		map[string]any{"ticket_id": ticketID})
}

// NewCustomerNotFound reports an unknown customer id.
func NewCustomerNotFound(customerID string) error {
	return NewDomainError(CodeCustomerNotFound, "Customer not found", http.StatusNotFound,
		map[string]any{"customer_id": customerID})
}

// NewNoEligibleEmployee reports an empty assignment pool for a ticket type.
func NewNoEligibleEmployee(ticketType string) error {
	return NewDomainError(CodeNoEligibleEmployee,
		"No employees available for ticket type: "+ticketType, http.StatusConflict,
		map[string]any{"ticket_type": ticketType})
}

// NewDuplicateTicket rejects a second active ticket of the same type.
func NewDuplicateTicket(ticketType string) error {
	return NewDomainError(CodeDuplicateTicket,
		"A ticket of type "+ticketType+" is already open. Please wait until it is resolved.",
		http.StatusConflict, map[string]any{"ticket_type": ticketType})
}

// NewInvalidTicketStatus rejects a transition the ticket's status does not allow.
func NewInvalidTicketStatus(message string) error {
	return NewDomainError(CodeInvalidTicketStatus, message, http.StatusBadRequest, nil)
}

// NewMissingCustomer rejects a ticket raised without a customer.
func NewMissingCustomer() error {
	return NewDomainError(CodeMissingCustomer, "Ticket must have a customer associated with it", http.StatusBadRequest, nil)
}

// NewInvalidArgument reports a malformed request.
func NewInvalidArgument(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidArgument, message, http.StatusBadRequest, details)
}

// NewUnauthorized reports a missing or invalid bearer token.
func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewForbidden reports a role that may not use the route.
func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewInternalError wraps an unexpected failure without exposing it to clients.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
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
	return NewInternalError(err).(*DomainError)
}

// MapError passes domain errors through and wraps anything else as an internal error.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
