// Package metrics exposes client-side prometheus counters for backend
// requests and live channel traffic, plus an optional /metrics listener.
package metrics

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zhubert/messly/internal/logger"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messly_api_requests_total",
			Help: "Total number of backend REST requests issued by the client.",
		},
		[]string{"method", "route", "status"},
	)
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "messly_api_request_duration_seconds",
			Help:    "Backend REST request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	liveActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "messly_live_active_connections",
			Help: "Number of open live channel connections.",
		},
	)
	liveEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messly_live_events_total",
			Help: "Total number of live channel events by direction and kind.",
		},
		[]string{"direction", "kind"},
	)
	liveMalformedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "messly_live_malformed_total",
			Help: "Total number of live channel payloads dropped as malformed.",
		},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messly_notifications_total",
			Help: "Desktop notifications by outcome.",
		},
		[]string{"outcome"},
	)
)

// Registry holds every messly collector. It is separate from the default
// registry so tests can gather it without process-wide Go collectors.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		apiRequestsTotal,
		apiRequestDuration,
		liveActiveConnections,
		liveEventsTotal,
		liveMalformedTotal,
		notificationsTotal,
	)
}

// ObserveRequest records one finished REST request. status is 0 when the
// request never got a response.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	apiRequestsTotal.WithLabelValues(method, route, code).Inc()
	apiRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncLiveActive() {
	liveActiveConnections.Inc()
}

func DecLiveActive() {
	liveActiveConnections.Dec()
}

// IncLiveEvent counts a live payload. direction is "in" or "out".
func IncLiveEvent(direction, kind string) {
	liveEventsTotal.WithLabelValues(direction, kind).Inc()
}

func IncLiveMalformed() {
	liveMalformedTotal.Inc()
}

// IncNotification counts a notification attempt: "sent", "throttled" or "failed".
func IncNotification(outcome string) {
	notificationsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the router serving /metrics.
func Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return r
}

// Server serves /metrics in the background while the TUI runs.
type Server struct {
	srv *http.Server
	ln  net.Listener
}

// Start listens on addr and serves /metrics until Shutdown.
func Start(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{
		srv: &http.Server{Handler: Handler(), ReadHeaderTimeout: 5 * time.Second},
		ln:  ln,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.WithComponent("metrics").Error("metrics server stopped", "error", err)
		}
	}()
	logger.WithComponent("metrics").Info("serving metrics", "addr", ln.Addr().String())
	return s, nil
}

// Addr returns the bound address, useful when addr was ":0".
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
