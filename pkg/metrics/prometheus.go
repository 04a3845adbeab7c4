package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	TourGroupsBuilt       prometheus.Counter
	ShiftTransitions      *prometheus.CounterVec
	AvailabilityFallbacks prometheus.Counter
	ShiftsAutoCompleted   prometheus.Counter
	PushMessages          *prometheus.CounterVec
	ReportRowsWritten     prometheus.Counter
	MalformedBookings     prometheus.Counter
	BookingFetchTime      prometheus.Histogram
	ErrorsCount           *prometheus.CounterVec
}

// NewMetrics creates the service metrics and registers them with reg
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TourGroupsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tour_groups_built_total",
			Help:      "The total number of tour groups produced from pickup bookings",
		}),
		ShiftTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shift_transitions_total",
			Help:      "Shift operations by operation and outcome",
		}, []string{"operation", "outcome"}),
		AvailabilityFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_availability_fallbacks_total",
			Help:      "Bus availability checks that failed to read shifts and defaulted to available",
		}),
		ShiftsAutoCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shifts_auto_completed_total",
			Help:      "Accepted shifts moved to completed by the sweep",
		}),
		PushMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_messages_total",
			Help:      "Push notifications by type and outcome",
		}, []string{"type", "outcome"}),
		ReportRowsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_rows_written_total",
			Help:      "Rows written to pickup reports",
		}),
		MalformedBookings: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_bookings_total",
			Help:      "Booking records rejected at the booking source boundary",
		}),
		BookingFetchTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_fetch_time_seconds",
			Help:      "Time taken to fetch bookings from the booking source",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// NewNopMetrics returns metrics registered on a throwaway registry
func NewNopMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
