// Package errors provides standardized error types for the query router.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Error codes attached to every error surfaced by the router and its
// serving layer.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidPlan      = "INVALID_PLAN"
	CodePlanningFailed   = "PLANNING_FAILED"
	CodeQueryFailed      = "QUERY_FAILED"
	CodeEngineExecution  = "ENGINE_EXECUTION_FAILED"
	CodeConnectionFailed = "CONNECTION_FAILED"
	CodeCanceled         = "CANCELED"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeUnavailable      = "UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// Detail keys set on routing errors so failures stay attributable to the
// decision that produced them.
const (
	DetailQueryType = "query_type"
	DetailEngine    = "engine"
)

// RouterError represents a routing error with code, message, and optional details.
type RouterError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *RouterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *RouterError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *RouterError) Is(target error) bool {
	t, ok := target.(*RouterError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds details to the error.
func (e *RouterError) WithDetails(details map[string]interface{}) *RouterError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *RouterError) WithDetail(key string, value interface{}) *RouterError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors
var (
	ErrEmptyQuery        = &RouterError{Code: CodeInvalidRequest, Message: "query must not be empty"}
	ErrQueryTooLong      = &RouterError{Code: CodeInvalidRequest, Message: "query exceeds maximum length"}
	ErrInvalidPlan       = &RouterError{Code: CodeInvalidPlan, Message: "plan tree is malformed"}
	ErrQueryCanceled     = &RouterError{Code: CodeCanceled, Message: "query was canceled"}
	ErrQueryTimeout      = &RouterError{Code: CodeDeadlineExceeded, Message: "query execution timeout"}
	ErrConnectionFailed  = &RouterError{Code: CodeConnectionFailed, Message: "database connection failed"}
	ErrEngineUnavailable = &RouterError{Code: CodeUnavailable, Message: "engine is unavailable"}
	ErrUnauthorized      = &RouterError{Code: CodeUnauthorized, Message: "authentication required"}
)

// New creates a new RouterError with the given code and message.
func New(code, message string) *RouterError {
	return &RouterError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with a RouterError.
func Wrap(err error, code, message string) *RouterError {
	if err == nil {
		return nil
	}
	return &RouterError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *RouterError {
	if err == nil {
		return nil
	}
	return &RouterError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// EngineExecution wraps an engine failure together with the query type and
// engine name that were selected for the dispatch.
func EngineExecution(err error, queryType, engine string) *RouterError {
	if err == nil {
		return nil
	}
	return Wrapf(err, CodeEngineExecution, "%s engine failed", engine).
		WithDetail(DetailQueryType, queryType).
		WithDetail(DetailEngine, engine)
}

// Cancellation wraps a context error, preserving the distinction between
// cancellation and deadline expiry.
func Cancellation(err error, queryType string) *RouterError {
	if err == nil {
		return nil
	}
	code := CodeCanceled
	if errors.Is(err, context.DeadlineExceeded) {
		code = CodeDeadlineExceeded
	}
	return Wrap(err, code, "query context done before completion").
		WithDetail(DetailQueryType, queryType)
}

// IsInvalidRequest checks if an error is an invalid request error.
func IsInvalidRequest(err error) bool {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Code == CodeInvalidRequest
	}
	return false
}

// IsEngineExecution checks if an error came from the engine boundary.
func IsEngineExecution(err error) bool {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Code == CodeEngineExecution
	}
	return false
}

// IsCancellation checks if an error reports a canceled or expired context.
func IsCancellation(err error) bool {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Code == CodeCanceled || routerErr.Code == CodeDeadlineExceeded
	}
	return false
}

// IsInternal checks if an error is an internal error.
func IsInternal(err error) bool {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Code == CodeInternal
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Code
	}
	return CodeInternal
}

// GetMessage extracts the error message from an error.
func GetMessage(err error) string {
	var routerErr *RouterError
	if errors.As(err, &routerErr) {
		return routerErr.Message
	}
	return err.Error()
}
