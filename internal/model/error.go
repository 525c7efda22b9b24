package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Retryable     bool   `json:"retryable,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// ErrorKind classifies a DomainError for transport mapping.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindExternal     ErrorKind = "external"
	KindInternal     ErrorKind = "internal"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeInvalidField         = "INVALID_FIELD"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeCategoryNotFound     = "CATEGORY_NOT_FOUND"
	ErrCodeCartItemNotFound     = "CART_ITEM_NOT_FOUND"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeNotCancellable       = "NOT_CANCELLABLE"
	ErrCodeInvalidStatus        = "INVALID_STATUS"
	ErrCodeInvalidTransition    = "INVALID_STATUS_TRANSITION"
	ErrCodeOrderNotPending      = "ORDER_NOT_PENDING"
	ErrCodeOrderNotPaid         = "ORDER_NOT_PAID"
	ErrCodeAlreadyProcessed     = "ALREADY_PROCESSED"
	ErrCodeAmountMismatch       = "AMOUNT_MISMATCH"
	ErrCodeDuplicateOrderNumber = "DUPLICATE_ORDER_NUMBER"
	ErrCodeEmailTaken           = "EMAIL_TAKEN"
	ErrCodeSlugTaken            = "SLUG_TAKEN"
	ErrCodeInvalidRole          = "INVALID_ROLE"
	ErrCodeSelfRoleChange       = "SELF_ROLE_CHANGE"
	ErrCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	ErrCodePaymentFailed        = "PAYMENT_FAILED"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches domain errors by code so parameterised errors compare equal
// to their sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the caller may safely retry the operation.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindExternal
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// AsDomainError extracts a DomainError from an error chain.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// Common domain errors
var (
	ErrInvalidJSON          = NewDomainError(KindValidation, ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrInvalidQuantity      = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be at least 1")
	ErrEmptyCart            = NewDomainError(KindConflict, ErrCodeEmptyCart, "Cart is empty")
	ErrInsufficientStock    = NewDomainError(KindConflict, ErrCodeInsufficientStock, "Insufficient stock")
	ErrProductNotFound      = NewDomainError(KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound     = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrCartItemNotFound     = NewDomainError(KindNotFound, ErrCodeCartItemNotFound, "Cart item not found")
	ErrOrderNotFound        = NewDomainError(KindNotFound, ErrCodeOrderNotFound, "Order not found")
	ErrUserNotFound         = NewDomainError(KindNotFound, ErrCodeUserNotFound, "User not found")
	ErrNotCancellable       = NewDomainError(KindConflict, ErrCodeNotCancellable, "Order cannot be cancelled in its current status")
	ErrInvalidStatus        = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Unknown order status")
	ErrInvalidTransition    = NewDomainError(KindConflict, ErrCodeInvalidTransition, "Order status cannot be changed to the requested value")
	ErrOrderNotPending      = NewDomainError(KindConflict, ErrCodeOrderNotPending, "Order is not awaiting payment")
	ErrOrderNotPaid         = NewDomainError(KindConflict, ErrCodeOrderNotPaid, "Only paid orders can be refunded")
	ErrAlreadyProcessed     = NewDomainError(KindConflict, ErrCodeAlreadyProcessed, "Payment has already been processed for this order")
	ErrAmountMismatch       = NewDomainError(KindConflict, ErrCodeAmountMismatch, "Payment amount does not match the order total")
	ErrDuplicateOrderNumber = NewDomainError(KindConflict, ErrCodeDuplicateOrderNumber, "Order number already exists")
	ErrEmailTaken           = NewDomainError(KindConflict, ErrCodeEmailTaken, "Email is already registered")
	ErrSlugTaken            = NewDomainError(KindConflict, ErrCodeSlugTaken, "Slug is already in use")
	ErrInvalidRole          = NewDomainError(KindValidation, ErrCodeInvalidRole, "Role must be user or admin")
	ErrSelfRoleChange       = NewDomainError(KindValidation, ErrCodeSelfRoleChange, "You cannot change your own role")
	ErrInvalidCredentials   = NewDomainError(KindUnauthorized, ErrCodeInvalidCredentials, "Invalid email or password")
	ErrUnauthorised         = NewDomainError(KindUnauthorized, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden            = NewDomainError(KindForbidden, ErrCodeForbidden, "Administrator access required")
	ErrPaymentFailed        = NewDomainError(KindExternal, ErrCodePaymentFailed, "Payment provider request failed")
)

// NewInsufficientStockError names the product that could not be reserved.
func NewInsufficientStockError(productName string, available int) *DomainError {
	return &DomainError{
		Kind:    KindConflict,
		Code:    ErrCodeInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock for %s (available: %d)", productName, available),
	}
}

// NewMissingFieldError reports a required field that was empty.
func NewMissingFieldError(field string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeMissingField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// NewInvalidFieldError reports a field with an unusable value.
func NewInvalidFieldError(field, reason string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    ErrCodeInvalidField,
		Message: fmt.Sprintf("%s %s", field, reason),
	}
}

// NewPaymentError wraps a gateway failure as a retryable external error.
func NewPaymentError(provider string, cause error) *DomainError {
	return &DomainError{
		Kind:    KindExternal,
		Code:    ErrCodePaymentFailed,
		Message: fmt.Sprintf("%s payment request failed", provider),
		Cause:   cause,
	}
}

// NewPaymentRejectedError reports a definitive decline from the provider.
// The caller may retry with a different payment, so it stays external.
func NewPaymentRejectedError(provider, reason string) *DomainError {
	return &DomainError{
		Kind:    KindExternal,
		Code:    ErrCodePaymentFailed,
		Message: fmt.Sprintf("%s rejected the payment: %s", provider, reason),
	}
}
