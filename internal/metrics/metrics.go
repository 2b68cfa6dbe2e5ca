package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outingpass_booking_transitions_total",
		Help: "Booking status transitions applied, by source and target status",
	}, []string{"from", "to"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outingpass_notifications_total",
		Help: "Parent notifications attempted, by result",
	}, []string{"result"})

	CodeVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outingpass_gate_code_verifications_total",
		Help: "Gate kiosk one-time code lookups, by result",
	}, []string{"result"})

	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outingpass_guard_decisions_total",
		Help: "Duplicate-action guard outcomes for staff actions",
	}, []string{"decision"})

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outingpass_bookings_created_total",
		Help: "Outing requests submitted",
	})

	BansSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "outingpass_bans_swept_total",
		Help: "Expired bans deleted by the sweeper",
	})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "outingpass_http_request_duration_seconds",
		Help:    "HTTP request latency by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
