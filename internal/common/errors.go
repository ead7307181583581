package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")

	// ErrNoReceipts and ErrNoExpenses are the only fatal reconciliation
	// outcomes: they block document generation but never a preview.
	ErrNoReceipts = errors.New("trip has no receipts")
	ErrNoExpenses = errors.New("trip has no expenses")
)

// Warning codes surfaced to the user alongside reconciliation results.
// Extraction failures never abort the workflow; they degrade into these.
const (
	WarnAmountMissing     = "amount_missing"
	WarnAmountOutOfRange  = "amount_out_of_range"
	WarnAmountInvalid     = "amount_invalid"
	WarnZeroReceiptsTotal = "zero_receipts_total"
	WarnNoTravelTimes     = "no_travel_times"
)

// Fatal error codes reported in a reconciliation result.
const (
	ErrCodeNoReceipts = "no_receipts"
	ErrCodeNoExpenses = "no_expenses"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
