// Package metrics exposes Prometheus counters and histograms for jobs run,
// chunks correlated, correction invocations, and per-step duration — an
// optional "/metrics" surface for long-running batch hosts, off by
// default. Each Collector owns a private registry instead of registering
// against the global one, so concurrent tests never collide on
// double-registration.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric this module reports, registered against its
// own registry so multiple Collectors (e.g. one per test) never collide.
type Collector struct {
	registry *prometheus.Registry

	JobsTotal        *prometheus.CounterVec
	ChunksCorrelated *prometheus.CounterVec
	CorrectionsTotal *prometheus.CounterVec
	StepDuration     *prometheus.HistogramVec
}

// New builds a Collector with all metrics registered.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		JobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncmux_jobs_total",
			Help: "Total number of synchronization jobs run, by final status.",
		}, []string{"status"}),
		ChunksCorrelated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncmux_chunks_correlated_total",
			Help: "Total number of correlation chunks processed, by accepted/rejected.",
		}, []string{"accepted"}),
		CorrectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "syncmux_corrections_total",
			Help: "Total number of audio corrections applied, by diagnosis kind.",
		}, []string{"kind"}),
		StepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "syncmux_step_duration_seconds",
			Help:    "Duration of each pipeline step, by step name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
	}
	reg.MustRegister(c.JobsTotal, c.ChunksCorrelated, c.CorrectionsTotal, c.StepDuration)
	return c
}

// ObserveStep records how long a named pipeline step took.
func (c *Collector) ObserveStep(step string, d time.Duration) {
	c.StepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// Server wraps an HTTP server exposing this Collector's registry at /metrics.
type Server struct {
	httpServer *http.Server
}

// Serve starts listening on addr in the background. An empty addr is a
// no-op — the surface is off by default.
func (c *Collector) Serve(addr string) (*Server, error) {
	if addr == "" {
		return nil, nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Handler: mux}
	go func() {
		_ = srv.Serve(ln)
	}()
	return &Server{httpServer: srv}, nil
}

// Shutdown gracefully stops the metrics server, if one was started.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
