package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityFetch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zyero",
			Name:      "availability_fetch_total",
			Help:      "Count of availability fetches against the booking store by result.",
		},
		[]string{"result"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zyero",
			Name:      "availability_cache_lookups_total",
			Help:      "Count of availability cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	bookingSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zyero",
			Name:      "booking_submitted_total",
			Help:      "Count of booking submissions by result.",
		},
		[]string{"result"},
	)

	adminAction = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zyero",
			Name:      "admin_action_total",
			Help:      "Count of admin console actions by action and result.",
		},
		[]string{"action", "result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilityFetch, cacheLookups, bookingSubmitted, adminAction)
	})
}

func IncAvailabilityFetch(result string) {
	availabilityFetch.WithLabelValues(result).Inc()
}

func IncCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}

func IncBookingSubmitted(result string) {
	bookingSubmitted.WithLabelValues(result).Inc()
}

func IncAdminAction(action, result string) {
	adminAction.WithLabelValues(action, result).Inc()
}
