// Package metrics exposes probe and pipeline counters for Prometheus.
//
// A nil *Recorder is valid and records nothing, so callers can wire it in
// unconditionally and only create one when metrics.listen is set.
package metrics

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rileyhilliard/pingspark/internal/errors"
	"github.com/rileyhilliard/pingspark/internal/logger"
)

const namespace = "pingspark"

// Recorder implements probe.Observer and aggregate.Observer.
type Recorder struct {
	registry *prometheus.Registry

	probes    *prometheus.CounterVec
	failures  *prometheus.CounterVec
	rtt       *prometheus.HistogramVec
	dropped   *prometheus.CounterVec
	snapshots prometheus.Counter
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		probes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probes_total",
				Help:      "Number of echo requests sent",
			},
			[]string{"host"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "probe_failures_total",
				Help:      "Number of echo requests without a reply",
			},
			[]string{"host"},
		),
		rtt: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rtt_seconds",
				Help:      "Round-trip time of successful echo requests",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"host"},
		),
		dropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_dropped_total",
				Help:      "Probe records the aggregator discarded",
			},
			[]string{"reason"},
		),
		snapshots: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_total",
				Help:      "Snapshots emitted by the aggregator",
			},
		),
	}

	r.registry.MustRegister(r.probes, r.failures, r.rtt, r.dropped, r.snapshots)
	return r
}

// ObserveProbe records one probe outcome for host.
func (r *Recorder) ObserveProbe(host string, rtt time.Duration, ok bool) {
	if r == nil {
		return
	}
	r.probes.WithLabelValues(host).Inc()
	if !ok {
		r.failures.WithLabelValues(host).Inc()
		return
	}
	r.rtt.WithLabelValues(host).Observe(rtt.Seconds())
}

// ObserveDropped counts a record the aggregator discarded.
func (r *Recorder) ObserveDropped(reason string) {
	if r == nil {
		return
	}
	r.dropped.WithLabelValues(reason).Inc()
}

// ObserveSnapshot counts an emitted snapshot.
func (r *Recorder) ObserveSnapshot() {
	if r == nil {
		return
	}
	r.snapshots.Inc()
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, log logger.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Cannot listen on %s for metrics", addr),
			"Pick a free port for metrics.listen or leave it empty to disable metrics")
	}
	return r.serve(ctx, ln, log)
}

func (r *Recorder) serve(ctx context.Context, ln net.Listener, log logger.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics on http://%s/metrics", ln.Addr())
	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return ctx.Err()
}
