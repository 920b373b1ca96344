// Package utils provides shared no-op test doubles for integration tests.
package utils

import (
	"time"

	"github.com/TFMV/janus/pkg/handlers"
	"github.com/TFMV/janus/pkg/services"
)

// NoOpLogger discards everything. It satisfies both services.Logger and
// handlers.Logger.
type NoOpLogger struct{}

// Debug does nothing.
func (NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Info does nothing.
func (NoOpLogger) Info(msg string, keysAndValues ...interface{}) {}

// Warn does nothing.
func (NoOpLogger) Warn(msg string, keysAndValues ...interface{}) {}

// Error does nothing.
func (NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}

// NoOpServiceMetrics implements services.MetricsCollector with no operations.
// It is used in tests where metrics collection is not the focus.
type NoOpServiceMetrics struct{}

// IncrementCounter does nothing.
func (NoOpServiceMetrics) IncrementCounter(name string, labels ...string) {}

// RecordHistogram does nothing.
func (NoOpServiceMetrics) RecordHistogram(name string, value float64, labels ...string) {}

// RecordGauge does nothing.
func (NoOpServiceMetrics) RecordGauge(name string, value float64, labels ...string) {}

// StartTimer returns a no-op timer that satisfies services.Timer.
func (NoOpServiceMetrics) StartTimer(name string) services.Timer {
	return noOpServiceTimer{}
}

type noOpServiceTimer struct{}

// Stop does nothing and returns zero.
func (noOpServiceTimer) Stop() time.Duration { return 0 }

// NoOpHandlerMetrics implements handlers.MetricsCollector with no operations.
type NoOpHandlerMetrics struct{}

// IncrementCounter does nothing.
func (NoOpHandlerMetrics) IncrementCounter(name string, tags ...string) {}

// RecordHistogram does nothing.
func (NoOpHandlerMetrics) RecordHistogram(name string, value float64, tags ...string) {}

// RecordGauge does nothing.
func (NoOpHandlerMetrics) RecordGauge(name string, value float64, tags ...string) {}

// StartTimer returns a no-op timer that satisfies handlers.Timer.
func (NoOpHandlerMetrics) StartTimer(name string) handlers.Timer {
	return noOpHandlerTimer{}
}

type noOpHandlerTimer struct{}

// Stop does nothing.
func (noOpHandlerTimer) Stop() {}
