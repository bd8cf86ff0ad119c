// Package collectors defines the metrics provider and clock collaborators
// that feed the load-pulse sampling loop. Concrete providers live in
// subpackages (see collectors/cpuload).
package collectors

import (
	"errors"
	"fmt"
	"time"
)

// Metric names used when wrapping provider errors.
const (
	MetricProcess = "process"
	MetricSystem  = "system"
)

// ErrMetricUnavailable signals that the platform cannot report a metric.
// The sampling loop treats it as a gap, never as a failure.
var ErrMetricUnavailable = errors.New("metric unavailable")

// LoadProvider reports CPU load as a fraction in [0,1].
//
// Both reads are expected to be cheap and free of side effects beyond the
// provider's own delta bookkeeping. Implementations return an error wrapping
// ErrMetricUnavailable when the platform has no such metric; any other error
// is a MetricError.
type LoadProvider interface {
	// ProcessLoad returns the CPU load of the current process, normalized
	// across all CPUs.
	ProcessLoad() (float64, error)

	// SystemLoad returns the CPU load of the whole machine.
	SystemLoad() (float64, error)
}

// MetricError describes a failed read that is not plain unavailability.
type MetricError struct {
	Metric string
	Err    error
}

func (e *MetricError) Error() string {
	return fmt.Sprintf("read %s load: %v", e.Metric, e.Err)
}

func (e *MetricError) Unwrap() error { return e.Err }

// Classify normalizes a provider result. A negative reading becomes
// ErrMetricUnavailable, a non-nil error that is not unavailability becomes a
// *MetricError, and unavailability is returned wrapped with the metric name.
func Classify(metric string, v float64, err error) (float64, error) {
	switch {
	case err == nil && v < 0:
		return 0, fmt.Errorf("%s load: %w", metric, ErrMetricUnavailable)
	case err == nil:
		return v, nil
	case errors.Is(err, ErrMetricUnavailable):
		return 0, fmt.Errorf("%s load: %w", metric, err)
	default:
		var me *MetricError
		if errors.As(err, &me) {
			return 0, err
		}
		return 0, &MetricError{Metric: metric, Err: err}
	}
}

// IsUnavailable reports whether err means the metric is not supported.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrMetricUnavailable)
}

// Clock supplies the wall-clock time used to label samples.
type Clock interface {
	Now() time.Time
}

// SystemClock is a Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time { return time.Now() }
