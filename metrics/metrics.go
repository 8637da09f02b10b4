package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OutcomeError labels requests that never produced an HTTP status
const OutcomeError = "error"

// Requests tracks outbound exchange requests
type Requests struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRequests creates the request collectors and registers them on reg. A nil reg skips
// registration, which is what tests and short-lived tools want.
func NewRequests(reg prometheus.Registerer) *Requests {
	r := &Requests{
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cryptox",
				Subsystem: "exchange",
				Name:      "requests_total",
				Help:      "Total number of requests sent to exchanges",
			},
			[]string{"exchange", "method", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cryptox",
				Subsystem: "exchange",
				Name:      "request_duration_seconds",
				Help:      "Latency of requests sent to exchanges",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"exchange"},
		),
	}

	if reg != nil {
		reg.MustRegister(r.total, r.duration)
	}

	return r
}

// Observe records one finished request
func (r *Requests) Observe(exchange, method, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.total.WithLabelValues(exchange, method, outcome).Inc()
	r.duration.WithLabelValues(exchange).Observe(elapsed.Seconds())
}

// Total exposes the request counter, mostly for tests
func (r *Requests) Total() *prometheus.CounterVec {
	return r.total
}

// Handler returns the Prometheus HTTP handler for g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve exposes g on addr under /metrics until ctx is done
func Serve(ctx context.Context, addr string, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
