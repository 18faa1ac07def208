package rest

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lintang-b-s/rutavial/pkg/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	routeDuration *prometheus.HistogramVec
	routeResults  *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rutavial_http_requests_total",
			Help: "Total http requests by route pattern, method and status code",
		}, []string{"path", "method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rutavial_http_request_duration_seconds",
			Help:    "Http request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		routeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rutavial_route_duration_seconds",
			Help:    "Fastest route computation duration in seconds, snapping and summary included",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"result"}),
		routeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rutavial_route_results_total",
			Help: "Route requests by result: found, no_route, out_of_coverage or error",
		}, []string{"result"}),
	}
}

func routeResult(err error) string {
	if err == nil {
		return "found"
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return "error"
	}
	switch ierr.Code() {
	case server.ErrNoRoute:
		return "no_route"
	case server.ErrBadParamInput:
		return "out_of_coverage"
	default:
		return "error"
	}
}

func (m *Metrics) ObserveRoute(d time.Duration, err error) {
	result := routeResult(err)
	m.routeDuration.WithLabelValues(result).Observe(d.Seconds())
	m.routeResults.WithLabelValues(result).Inc()
}

// PromeHttpMiddleware records count & latency of every request under its chi route pattern.
func PromeHttpMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.httpRequests.WithLabelValues(path, r.Method, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
