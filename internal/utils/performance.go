package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Thresholds above which a completed operation is reported at a louder level.
const (
	SlowOperationThreshold     = 10 * time.Second
	VerySlowOperationThreshold = 30 * time.Second
)

// OperationTimer provides a defer-friendly way to measure operation duration
//
// Usage:
//
//	func (o *Optimizer) Optimize(...) {
//	    defer utils.OperationTimer("optimize", o.log)()
//	}
func OperationTimer(operation string, log zerolog.Logger) func() {
	start := time.Now()

	return func() {
		logDuration(log, operation, time.Since(start), nil)
	}
}

// OperationTimerWithFields is OperationTimer with extra structured fields attached
// to the completion record (simulation counts, asset counts, method names).
func OperationTimerWithFields(operation string, log zerolog.Logger, fields map[string]interface{}) func() {
	start := time.Now()

	return func() {
		logDuration(log, operation, time.Since(start), fields)
	}
}

func logDuration(log zerolog.Logger, operation string, duration time.Duration, fields map[string]interface{}) {
	event := log.Debug()
	switch {
	case duration > VerySlowOperationThreshold:
		event = log.Warn()
	case duration > SlowOperationThreshold:
		event = log.Info()
	}

	event = event.
		Str("operation", operation).
		Dur("duration_ms", duration)

	for key, value := range fields {
		switch v := value.(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case int64:
			event = event.Int64(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		default:
			event = event.Interface(key, v)
		}
	}

	event.Msg("Operation completed")
}
