// Package handlers contains the HTTP handlers for the query API.
package handlers

import (
	"context"

	"github.com/TFMV/janus/pkg/models"
)

// QueryService is the service contract the handlers depend on.
type QueryService interface {
	// ExecuteQuery executes a statement and returns its result.
	ExecuteQuery(ctx context.Context, req *models.QueryRequest) (*models.QueryResult, error)

	// ExplainQuery returns the routing summary for a statement without
	// executing it.
	ExplainQuery(ctx context.Context, query string) (*models.ExplainResult, error)

	// ClassifyQuery returns the classification for a statement.
	ClassifyQuery(ctx context.Context, query string) (*models.ClassifyResult, error)

	// ValidateQuery validates a statement without executing it.
	ValidateQuery(ctx context.Context, query string) error
}

// Pinger reports whether a backing engine connection is healthy.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Logger defines the logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MetricsCollector defines the metrics interface.
type MetricsCollector interface {
	IncrementCounter(name string, tags ...string)
	RecordHistogram(name string, value float64, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
	StartTimer(name string) Timer
}

// Timer represents a timing measurement.
type Timer interface {
	Stop()
}
