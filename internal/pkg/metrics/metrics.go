package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded by BookingRejections.
const (
	ReasonValidation       = "validation"
	ReasonCooldown         = "cooldown"
	ReasonResourceConflict = "resource_conflict"
	ReasonCoachConflict    = "coach_conflict"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "court_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "court_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "court_bookings_created_total",
			Help: "Total number of confirmed bookings created",
		},
	)

	BookingRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "court_booking_rejections_total",
			Help: "Booking requests rejected by admission checks",
		},
		[]string{"reason"},
	)

	BookingsCancelled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "court_bookings_cancelled_total",
			Help: "Total number of bookings moved to cancelled",
		},
	)

	ChatMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "court_chat_messages_sent_total",
			Help: "Total number of chat messages stored",
		},
	)

	NotificationsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "court_notifications_dispatched_total",
			Help: "Notification events handed to the dispatcher",
		},
		[]string{"event", "status"},
	)
)

// RecordRejection increments the rejection counter for reason.
func RecordRejection(reason string) {
	BookingRejections.WithLabelValues(reason).Inc()
}

// RecordNotification records the outcome of a single dispatched event.
func RecordNotification(event string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	NotificationsDispatched.WithLabelValues(event, status).Inc()
}
