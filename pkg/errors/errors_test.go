package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouterError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *RouterError
		expected string
	}{
		{
			name: "error without cause",
			err: &RouterError{
				Code:    CodeInvalidRequest,
				Message: "invalid input",
			},
			expected: "INVALID_REQUEST: invalid input",
		},
		{
			name: "error with cause",
			err: &RouterError{
				Code:    CodeInvalidRequest,
				Message: "invalid input",
				Cause:   fmt.Errorf("underlying error"),
			},
			expected: "INVALID_REQUEST: invalid input (caused by: underlying error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestRouterError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := &RouterError{
		Code:    CodeInvalidRequest,
		Message: "invalid input",
		Cause:   cause,
	}

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, &RouterError{Code: CodeInvalidRequest}))
}

func TestRouterError_Is(t *testing.T) {
	err1 := &RouterError{Code: CodeCanceled, Message: "canceled"}
	err2 := &RouterError{Code: CodeCanceled, Message: "different message"}
	err3 := &RouterError{Code: CodeInvalidRequest, Message: "invalid"}
	stdErr := fmt.Errorf("standard error")

	assert.True(t, err1.Is(err2), "errors with same code should match")
	assert.False(t, err1.Is(err3), "errors with different codes should not match")
	assert.False(t, err1.Is(stdErr), "router error should not match standard error")
}

func TestRouterError_WithDetail(t *testing.T) {
	err := &RouterError{
		Code:    CodeEngineExecution,
		Message: "engine failed",
	}

	err = err.WithDetail(DetailQueryType, "Analytical").WithDetail(DetailEngine, "duckdb")

	assert.Equal(t, "Analytical", err.Details[DetailQueryType])
	assert.Equal(t, "duckdb", err.Details[DetailEngine])
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrap(cause, CodeInvalidRequest, "wrapped message")

	assert.Equal(t, CodeInvalidRequest, err.Code)
	assert.Equal(t, "wrapped message", err.Message)
	assert.Equal(t, cause, err.Cause)

	assert.Nil(t, Wrap(nil, CodeInvalidRequest, "message"))
}

func TestWrapf(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := Wrapf(cause, CodeInvalidRequest, "wrapped message %d", 42)

	assert.Equal(t, CodeInvalidRequest, err.Code)
	assert.Equal(t, "wrapped message 42", err.Message)
	assert.Equal(t, cause, err.Cause)

	assert.Nil(t, Wrapf(nil, CodeInvalidRequest, "message %d", 42))
}

func TestEngineExecution(t *testing.T) {
	cause := fmt.Errorf("no such table: users")
	err := EngineExecution(cause, "Transactional", "sqlite")

	assert.Equal(t, CodeEngineExecution, err.Code)
	assert.Equal(t, "Transactional", err.Details[DetailQueryType])
	assert.Equal(t, "sqlite", err.Details[DetailEngine])
	assert.True(t, errors.Is(err, cause), "cause should survive wrapping")

	assert.Nil(t, EngineExecution(nil, "Transactional", "sqlite"))
}

func TestCancellation(t *testing.T) {
	tests := []struct {
		name     string
		cause    error
		expected string
	}{
		{
			name:     "canceled context",
			cause:    context.Canceled,
			expected: CodeCanceled,
		},
		{
			name:     "expired context",
			cause:    context.DeadlineExceeded,
			expected: CodeDeadlineExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Cancellation(tt.cause, "Analytical")
			assert.Equal(t, tt.expected, err.Code)
			assert.Equal(t, "Analytical", err.Details[DetailQueryType])
			assert.True(t, IsCancellation(err))
		})
	}

	assert.Nil(t, Cancellation(nil, "Analytical"))
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"invalid request matches", ErrEmptyQuery, IsInvalidRequest, true},
		{"invalid request rejects other code", ErrQueryCanceled, IsInvalidRequest, false},
		{"invalid request rejects std error", fmt.Errorf("boom"), IsInvalidRequest, false},
		{"engine execution matches", EngineExecution(fmt.Errorf("x"), "Hybrid", "duckdb"), IsEngineExecution, true},
		{"engine execution rejects other code", ErrEmptyQuery, IsEngineExecution, false},
		{"cancellation matches canceled", ErrQueryCanceled, IsCancellation, true},
		{"cancellation matches timeout", ErrQueryTimeout, IsCancellation, true},
		{"cancellation rejects other code", ErrEmptyQuery, IsCancellation, false},
		{"internal matches", New(CodeInternal, "internal error"), IsInternal, true},
		{"internal rejects other code", ErrEmptyQuery, IsInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "router error",
			err:      ErrInvalidPlan,
			expected: CodeInvalidPlan,
		},
		{
			name:     "standard error",
			err:      fmt.Errorf("standard error"),
			expected: CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetCode(tt.err))
		})
	}
}

func TestGetMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "router error",
			err:      ErrEmptyQuery,
			expected: "query must not be empty",
		},
		{
			name:     "standard error",
			err:      fmt.Errorf("standard error"),
			expected: "standard error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetMessage(tt.err))
		})
	}
}

func TestCommonErrors(t *testing.T) {
	assert.Equal(t, CodeInvalidRequest, ErrEmptyQuery.Code)
	assert.Equal(t, CodeInvalidRequest, ErrQueryTooLong.Code)
	assert.Equal(t, CodeInvalidPlan, ErrInvalidPlan.Code)
	assert.Equal(t, CodeCanceled, ErrQueryCanceled.Code)
	assert.Equal(t, CodeDeadlineExceeded, ErrQueryTimeout.Code)
	assert.Equal(t, CodeConnectionFailed, ErrConnectionFailed.Code)
	assert.Equal(t, CodeUnavailable, ErrEngineUnavailable.Code)
	assert.Equal(t, CodeUnauthorized, ErrUnauthorized.Code)
}
