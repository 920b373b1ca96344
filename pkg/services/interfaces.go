// Package services contains business logic implementations.
package services

import (
	"context"
	"time"

	"github.com/TFMV/janus/pkg/models"
)

// QueryService defines query operations.
type QueryService interface {
	// ExecuteQuery validates, routes, and executes a query request.
	ExecuteQuery(ctx context.Context, req *models.QueryRequest) (*models.QueryResult, error)
	// ExplainQuery returns the routing summary for a statement without
	// executing it.
	ExplainQuery(ctx context.Context, query string) (*models.ExplainResult, error)
	// ClassifyQuery returns the classification for a statement.
	ClassifyQuery(ctx context.Context, query string) (*models.ClassifyResult, error)
	// ValidateQuery validates a statement without executing it.
	ValidateQuery(ctx context.Context, query string) error
}

// Logger defines logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MetricsCollector defines metrics collection interface.
type MetricsCollector interface {
	IncrementCounter(name string, labels ...string)
	RecordHistogram(name string, value float64, labels ...string)
	RecordGauge(name string, value float64, labels ...string)
	StartTimer(name string) Timer
}

// Timer represents a timing measurement.
type Timer interface {
	Stop() time.Duration
}
