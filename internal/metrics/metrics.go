// Package metrics provides the MetricsRecorder interface and a noop implementation.
package metrics

import "time"

// MetricsRecorder is the interface for recording operational metrics. The
// op argument is the database operation name ("save", "reload", "bootstrap").
type MetricsRecorder interface {
	RecordLatency(op string, d time.Duration)
	RecordError(op string)
}

// Noop is a MetricsRecorder that discards all data.
type Noop struct{}

func (Noop) RecordLatency(op string, d time.Duration) {}
func (Noop) RecordError(op string)                    {}
