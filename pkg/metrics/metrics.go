// Package metrics defines the prometheus collectors for the service. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ticketing"

type Metrics struct {
	requests        *prometheus.HistogramVec
	seatTransitions *prometheus.CounterVec
	bookings        *prometheus.CounterVec
	scans           *prometheus.CounterVec
	sweeps          *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		seatTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seat_transitions_total",
			Help:      "Seat state transitions attempted, by outcome.",
		}, []string{"transition", "outcome"}),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking creation attempts, by outcome.",
		}, []string{"outcome"}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_scans_total",
			Help:      "Ticket scans, by result status.",
		}, []string{"status"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeper_released_total",
			Help:      "Rows released by the background sweeper.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.requests, m.seatTransitions, m.bookings, m.scans, m.sweeps)
	return m
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) SeatTransition(transition string, ok bool) {
	if m == nil {
		return
	}
	outcome := "applied"
	if !ok {
		outcome = "rejected"
	}
	m.seatTransitions.WithLabelValues(transition, outcome).Inc()
}

func (m *Metrics) BookingOutcome(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ScanOutcome(status string) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(status).Inc()
}

func (m *Metrics) SweepReleased(kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.sweeps.WithLabelValues(kind).Add(float64(n))
}

// Handler exposes the registry in the prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
