package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Alijeyrad/clinicbook/pkg/apperr"
)

// BookingMetrics counts booking operations by outcome and records how long
// callers waited for staff locks. A nil *BookingMetrics records nothing.
type BookingMetrics struct {
	operations metric.Int64Counter
	lockWait   metric.Float64Histogram
}

// NewBookingMetrics registers the booking instruments on the global meter
// provider, which InitTelemetry points at the Prometheus exporter.
func NewBookingMetrics() (*BookingMetrics, error) {
	meter := otel.Meter(tracerName)

	operations, err := meter.Int64Counter(
		"booking_operations_total",
		metric.WithDescription("Booking operations by name and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	lockWait, err := meter.Float64Histogram(
		"booking_lock_wait_ms",
		metric.WithDescription("Time spent waiting for a staff lock in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &BookingMetrics{operations: operations, lockWait: lockWait}, nil
}

// Operation records one finished operation. The outcome is "ok" or the
// error kind, e.g. "conflict" or "busy".
func (m *BookingMetrics) Operation(ctx context.Context, name string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	m.operations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", name),
		attribute.String("outcome", outcome),
	))
}

// ObserveLock matches lock.Observer.
func (m *BookingMetrics) ObserveLock(_ string, waited time.Duration, acquired bool) {
	if m == nil {
		return
	}
	m.lockWait.Record(context.Background(), float64(waited.Microseconds())/1000,
		metric.WithAttributes(attribute.Bool("acquired", acquired)))
}
