package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutorhub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutorhub",
			Name:      "bookings_created_total",
			Help:      "Bookings created successfully.",
		},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tutorhub",
			Name:      "booking_conflicts_total",
			Help:      "Booking attempts rejected because the window was taken.",
		},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutorhub",
			Name:      "booking_status_changes_total",
			Help:      "Booking status changes by target status.",
		},
		[]string{"status"},
	)

	slotGeneration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tutorhub",
			Name:      "slot_generation_seconds",
			Help:      "Time spent generating free slots for one day.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tutorhub",
			Name:      "availability_cache_requests_total",
			Help:      "Availability cache lookups by outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			bookingsCreated,
			bookingConflicts,
			statusChanges,
			slotGeneration,
			cacheHits,
		)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

// ObserveSlotGeneration records the duration of one free-slot computation.
func ObserveSlotGeneration(seconds float64) {
	slotGeneration.Observe(seconds)
}

// IncCache records a cache lookup outcome: "hit", "miss" or "error".
func IncCache(outcome string) {
	cacheHits.WithLabelValues(outcome).Inc()
}
