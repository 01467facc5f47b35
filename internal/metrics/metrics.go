package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "climateguard"

// Metrics holds Prometheus metrics for the service. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	Refreshes        *prometheus.CounterVec
	Memberships      *prometheus.CounterVec
	StoreFallbacks   *prometheus.CounterVec
	LocationTiers    *prometheus.CounterVec
	FeedItems        *prometheus.CounterVec
}

// NewMetrics registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RequestsInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		Refreshes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "refreshes_total",
				Help:      "Climate state refresh attempts by outcome",
			},
			[]string{"outcome"}, // ok, stale, throttled, busy
		),
		Memberships: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "project_memberships_total",
				Help:      "Project join/leave operations by result",
			},
			[]string{"action", "result"},
		),
		StoreFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_fallbacks_total",
				Help:      "Remote backend operations answered by the in-memory mirror",
			},
			[]string{"op"},
		),
		LocationTiers: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "location_resolutions_total",
				Help:      "Location resolution attempts per tier",
			},
			[]string{"tier", "outcome"},
		),
		FeedItems: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "news_feed_items_total",
				Help:      "News items ingested from feeds",
			},
			[]string{"feed"},
		),
	}
}

func (m *Metrics) ObserveRefresh(outcome string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMembership(action string, ok bool) {
	if m == nil {
		return
	}
	result := "rejected"
	if ok {
		result = "ok"
	}
	m.Memberships.WithLabelValues(action, result).Inc()
}

func (m *Metrics) ObserveFallback(op string) {
	if m == nil {
		return
	}
	m.StoreFallbacks.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveLocation(tier, outcome string) {
	if m == nil {
		return
	}
	m.LocationTiers.WithLabelValues(tier, outcome).Inc()
}

func (m *Metrics) ObserveFeedItems(feed string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FeedItems.WithLabelValues(feed).Add(float64(n))
}

// Middleware records request counts, durations and in-flight requests.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsInFlight.Inc()
		defer m.RequestsInFlight.Dec()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestCounter.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
