package apperrors

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that a concurrent writer got to the resource first.
var ErrConflict = errors.New("concurrent modification")

// ErrConfirmationRequired indicates a change that affects existing data and needs explicit confirmation.
var ErrConfirmationRequired = errors.New("confirmation required")

// AppError wraps an infrastructure failure with an HTTP-ish status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError returns an error matching ErrNotFound.
func NewNotFoundError(message string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, message)
}

// ValidationError is malformed input rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError without a field.
func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NewFieldValidationError creates a ValidationError for a named field.
func NewFieldValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidLineItemError is a line item that fails recomputation or reference checks.
type InvalidLineItemError struct {
	Index  int
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("invalid line item %d: %s", e.Index, e.Reason)
}

func (e *InvalidLineItemError) Unwrap() error { return ErrValidation }

// ExchangeRateMissingError means no rate is known for a foreign-currency posting.
// The caller should ask the user for a rate and retry.
type ExchangeRateMissingError struct {
	From string
	To   string
	Date time.Time
}

func (e *ExchangeRateMissingError) Error() string {
	return fmt.Sprintf("exchange rate missing for %s->%s on %s", e.From, e.To, e.Date.Format("2006-01-02"))
}

// UnbalancedError means a posting still did not balance after remainder correction.
type UnbalancedError struct {
	TransactionID string
	Debits        decimal.Decimal
	Credits       decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("transaction %s is unbalanced: debits %s, credits %s", e.TransactionID, e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

// Drift returns debits minus credits.
func (e *UnbalancedError) Drift() decimal.Decimal {
	return e.Debits.Sub(e.Credits)
}

// OverApplicationError means a payment application exceeds what remains.
type OverApplicationError struct {
	TargetID  string
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverApplicationError) Error() string {
	return fmt.Sprintf("cannot apply %s to %s: only %s remains", e.Requested.StringFixed(2), e.TargetID, e.Remaining.StringFixed(2))
}

// ConcurrencyConflictError means another writer holds or changed the resource.
type ConcurrencyConflictError struct {
	Resource string
	ID       string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified concurrently; reload and retry", e.Resource, e.ID)
}

func (e *ConcurrencyConflictError) Unwrap() error { return ErrConflict }

// NewConcurrencyConflict creates a ConcurrencyConflictError.
func NewConcurrencyConflict(resource, id string) error {
	return &ConcurrencyConflictError{Resource: resource, ID: id}
}
