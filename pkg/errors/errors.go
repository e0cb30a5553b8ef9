package errors

import (
	"fmt"
)

// ErrorCategory represents the category of error for handling
type ErrorCategory string

const (
	CategoryApproved       ErrorCategory = "approved"
	CategoryDeclined       ErrorCategory = "declined"
	CategoryFraud          ErrorCategory = "fraud"
	CategorySystemError    ErrorCategory = "system_error"
	CategoryNetworkError   ErrorCategory = "network_error"
	CategoryInvalidRequest ErrorCategory = "invalid_request"
)

// PaymentError represents a processor-reported error with detailed context
type PaymentError struct {
	Code           string
	Message        string
	GatewayMessage string
	IsRetriable    bool
	Category       ErrorCategory
	Details        map[string]interface{}
}

func (e *PaymentError) Error() string {
	if e.GatewayMessage != "" {
		return fmt.Sprintf("%s: %s (gateway: %s)", e.Code, e.Message, e.GatewayMessage)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPaymentError creates a new payment error
func NewPaymentError(code, message string, category ErrorCategory, retriable bool) *PaymentError {
	return &PaymentError{
		Code:        code,
		Message:     message,
		Category:    category,
		IsRetriable: retriable,
		Details:     make(map[string]interface{}),
	}
}

// ValidationError represents input validation errors raised before any
// network call is attempted
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ResponseError represents a reply whose envelope is missing the fields
// every CashBox call is required to carry (return code, return string).
// It is distinct from a processor-reported decline: a decline is a
// well-formed reply, a ResponseError means the reply cannot be trusted
// at all.
type ResponseError struct {
	Action  string
	Missing string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("malformed reply for '%s': missing %s", e.Action, e.Missing)
}

// NewResponseError creates a new response-shape error
func NewResponseError(action, missing string) *ResponseError {
	return &ResponseError{Action: action, Missing: missing}
}

// InconsistentReplyError is raised when a multi-record reply contradicts
// itself, e.g. qtySuccess/qtyFail counters that disagree with the
// per-record return codes. Such a reply cannot be reported as either
// success or decline.
type InconsistentReplyError struct {
	Action string
	Detail string
}

func (e *InconsistentReplyError) Error() string {
	return fmt.Sprintf("inconsistent reply for '%s': %s", e.Action, e.Detail)
}

// NewInconsistentReplyError creates a new inconsistent-reply error
func NewInconsistentReplyError(action, detail string) *InconsistentReplyError {
	return &InconsistentReplyError{Action: action, Detail: detail}
}
