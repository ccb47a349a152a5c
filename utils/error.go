package utils

import (
	"errors"
	"fmt"
)

var ErrorRecordNotFound = errors.New("record not found")

// ErrUnauthorized is the single denial returned for a missing identity or a
// row the caller does not own. It never says which of the two happened.
var ErrUnauthorized = errors.New("unauthorized")

var ErrValidationFailed = errors.New("validation failed")

// validation reasons
var (
	ErrEmptyItems            = errors.New("document must have at least one item")
	ErrInvalidQuantity       = errors.New("quantity must be at least 1")
	ErrNegativePrice         = errors.New("unit price must not be negative")
	ErrNegativeTaxRate       = errors.New("tax rate must not be negative")
	ErrMissingCounterparty   = errors.New("supplier is required")
	ErrMissingDocumentNumber = errors.New("document number is required")
	ErrInvalidStatus         = errors.New("invalid payment status")
	ErrUnknownProduct        = errors.New("product not found")
	ErrUnknownCounterparty   = errors.New("customer or supplier not found")
	ErrInvalidCategory       = errors.New("invalid expense category")
	ErrNonPositiveAmount     = errors.New("amount must be greater than zero")
	ErrInvalidPhone          = errors.New("invalid phone number")
	ErrInvalidWindow         = errors.New("report window start is after end")
)

// ValidationError carries one rejected input. Field is optional and, for line
// items, names the offending index (e.g. "items[2].quantity").
type ValidationError struct {
	Reason error
	Field  string
}

func NewValidationError(reason error, field string) *ValidationError {
	return &ValidationError{Reason: reason, Field: field}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason.Error()
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason.Error())
}

func (e *ValidationError) Unwrap() error { return e.Reason }

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// write steps reported by PartialWriteError
const (
	StepInsertItems  = "insert_items"
	StepAdjustStock  = "adjust_stock"
	StepDeleteItems  = "delete_items"
	StepRestoreStock = "restore_stock"
)

// PartialWriteError means the header write went through but a later step did
// not. The header is left in place for the caller to reconcile.
type PartialWriteError struct {
	Document   string
	DocumentId string
	Step       string
	Err        error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s %s written but %s failed: %v", e.Document, e.DocumentId, e.Step, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// StoreError wraps a failure of the backing store where nothing was left half-written.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStoreError leaves taxonomy errors untouched and wraps everything else.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	var partialErr *PartialWriteError
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrorRecordNotFound) || errors.As(err, &storeErr) || errors.As(err, &partialErr) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
