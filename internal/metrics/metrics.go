// Package metrics records ingestion, sink and HTTP measurements.
package metrics

import "time"

// Collector receives measurements from the ingest service, the sinks and
// the HTTP API.
type Collector interface {
	// Imports
	RecordImport(source string, imported, duplicates, skipped int, duration time.Duration)
	RecordMatch(matcher string)

	// Sink
	RecordSinkOp(sink, operation string, success bool, duration time.Duration)
	RecordCircuitState(sink string, state CircuitState)

	// HTTP
	RecordHTTPRequest(method, endpoint string, status int, duration time.Duration)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector discards every measurement.
type NoOpCollector struct{}

func (NoOpCollector) RecordImport(string, int, int, int, time.Duration) {}
func (NoOpCollector) RecordMatch(string) {}
func (NoOpCollector) RecordSinkOp(string, string, bool, time.Duration) {}
func (NoOpCollector) RecordCircuitState(string, CircuitState) {}
func (NoOpCollector) RecordHTTPRequest(string, string, int, time.Duration) {}
