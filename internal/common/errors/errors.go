// Package errors provides the standardized error taxonomy for the dialogue pipeline.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Error Categories
// ==========================

// ErrorCategory classifies how an error is surfaced and logged.
//
// BUSINESS errors are expected domain-rule violations and are always
// user-facing. VALIDATION errors are malformed command data, surfaced as
// "I couldn't understand that part" messages and logged at warning level.
// SYSTEM errors are infrastructure failures, never surfaced verbatim to
// the user.
type ErrorCategory string

const (
	CategoryBusiness   ErrorCategory = "BUSINESS"
	CategoryValidation ErrorCategory = "VALIDATION"
	CategorySystem     ErrorCategory = "SYSTEM"
)

// ==========================
// 2. Error Codes
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Business rule errors (domain violations the user can act on).
const (
	ErrCodeItemUnavailable          ErrorCode = "ITEM_UNAVAILABLE"
	ErrCodeItemNotFound             ErrorCode = "ITEM_NOT_FOUND"
	ErrCodeSizeNotAvailable         ErrorCode = "SIZE_NOT_AVAILABLE"
	ErrCodeSizeRequired             ErrorCode = "SIZE_REQUIRED"
	ErrCodeModifierConflict         ErrorCode = "MODIFIER_CONFLICT"
	ErrCodeOptionRequiredMissing    ErrorCode = "OPTION_REQUIRED_MISSING"
	ErrCodeQuantityExceedsLimit     ErrorCode = "QUANTITY_EXCEEDS_LIMIT"
	ErrCodeInventoryShortage        ErrorCode = "INVENTORY_SHORTAGE"
	ErrCodeModifierAddNotAllowed    ErrorCode = "MODIFIER_ADD_NOT_ALLOWED"
	ErrCodeModifierRemoveNotPresent ErrorCode = "MODIFIER_REMOVE_NOT_PRESENT"
	ErrCodeNoActiveOrder            ErrorCode = "NO_ACTIVE_ORDER"
)

// Validation errors (malformed command slots or schema mismatch).
const (
	ErrCodeInvalidQuantity        ErrorCode = "INVALID_QUANTITY"
	ErrCodeInvalidInputFormat     ErrorCode = "INVALID_INPUT_FORMAT"
	ErrCodeMissingRequiredField   ErrorCode = "MISSING_REQUIRED_FIELD"
	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
)

// System errors (collaborator or infrastructure failures).
const (
	ErrCodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	ErrCodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternalError        ErrorCode = "INTERNAL_ERROR"
	ErrCodeTimeout              ErrorCode = "TIMEOUT"
)

var codeCategories = map[ErrorCode]ErrorCategory{
	ErrCodeItemUnavailable:          CategoryBusiness,
	ErrCodeItemNotFound:             CategoryBusiness,
	ErrCodeSizeNotAvailable:         CategoryBusiness,
	ErrCodeSizeRequired:             CategoryBusiness,
	ErrCodeModifierConflict:         CategoryBusiness,
	ErrCodeOptionRequiredMissing:    CategoryBusiness,
	ErrCodeQuantityExceedsLimit:     CategoryBusiness,
	ErrCodeInventoryShortage:        CategoryBusiness,
	ErrCodeModifierAddNotAllowed:    CategoryBusiness,
	ErrCodeModifierRemoveNotPresent: CategoryBusiness,
	ErrCodeNoActiveOrder:            CategoryBusiness,

	ErrCodeInvalidQuantity:        CategoryValidation,
	ErrCodeInvalidInputFormat:     CategoryValidation,
	ErrCodeMissingRequiredField:   CategoryValidation,
	ErrCodeSchemaValidationFailed: CategoryValidation,

	ErrCodeDatabaseError:        CategorySystem,
	ErrCodeExternalServiceError: CategorySystem,
	ErrCodeInternalError:        CategorySystem,
	ErrCodeTimeout:              CategorySystem,
}

// CategoryOf returns the category a code belongs to. Unknown codes are
// treated as SYSTEM so that nothing unexpected is shown to the user.
func CategoryOf(code ErrorCode) ErrorCategory {
	if cat, ok := codeCategories[code]; ok {
		return cat
	}
	return CategorySystem
}

// ==========================
// 3. StandardError
// ==========================

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Category  ErrorCategory          `json:"category"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying error so errors.Is and errors.As keep
// working through a StandardError.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error to the chain.
func (e *StandardError) WithCause(err error) *StandardError {
	e.cause = err
	return e
}

// ==========================
// 4. Error Constructors
// ==========================

// NewItemUnavailableError creates a non-retryable business error for an item
// the menu does not carry.
func NewItemUnavailableError(itemName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeItemUnavailable,
		Category:  CategoryBusiness,
		Message:   fmt.Sprintf("Sorry, %s is not available right now.", itemName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQuantityExceedsLimitError creates a non-retryable business error. The
// message is user-facing; the requested amount goes into details.
func NewQuantityExceedsLimitError(requested, limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuantityExceedsLimit,
		Category:  CategoryBusiness,
		Message:   fmt.Sprintf("I can only do up to %d of one item.", limit),
		Details:   fmt.Sprintf("requested %d, limit %d", requested, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaValidationError creates a validation error carrying the offending
// field in its details.
func NewSchemaValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidationFailed,
		Category:  CategoryValidation,
		Message:   "I couldn't understand that part of your request.",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError creates a retryable system error wrapping a database failure.
func NewDatabaseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseError,
		Category:  CategorySystem,
		Message:   "Database error during order operation",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewExternalServiceError creates a retryable system error for a failed
// collaborator call.
func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalServiceError,
		Category:  CategorySystem,
		Message:   fmt.Sprintf("Call to %s failed", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewTimeoutError creates a system error for a deadline that expired while
// waiting on a collaborator. A timed-out turn is reported upstream exactly
// like any other SYSTEM failure.
func NewTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Category:  CategorySystem,
		Message:   fmt.Sprintf("Timed out waiting for %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure as a non-retryable system error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Category:  CategorySystem,
		Message:   "Unexpected internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// Normalize ensures any error is represented as a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}
