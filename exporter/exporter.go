// Package exporter publishes the latest load readings as Prometheus metrics.
package exporter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/tinyland/lab/load-pulse/collectors"
	"gitlab.com/tinyland/lab/load-pulse/feed"
)

// Error kinds used as the "kind" label of the errors counter.
const (
	KindUnavailable = "unavailable"
	KindFailed      = "failed"
)

// Exporter is a feed.Observer backed by a private registry.
type Exporter struct {
	registry *prometheus.Registry

	processCPU prometheus.Gauge
	systemCPU  prometheus.Gauge
	ticks      prometheus.Counter
	errors     *prometheus.CounterVec
}

// New creates an Exporter with its metrics registered on a fresh registry.
func New() *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Exporter{
		registry: reg,
		processCPU: factory.NewGauge(prometheus.GaugeOpts{
			Name: "load_pulse_process_cpu_percent",
			Help: "Most recent CPU load of this process, as a percentage of all CPUs",
		}),
		systemCPU: factory.NewGauge(prometheus.GaugeOpts{
			Name: "load_pulse_system_cpu_percent",
			Help: "Most recent system-wide CPU load percentage",
		}),
		ticks: factory.NewCounter(prometheus.CounterOpts{
			Name: "load_pulse_ticks_total",
			Help: "Total number of sampler ticks applied",
		}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "load_pulse_metric_errors_total",
			Help: "Total number of metric reads that produced no value",
		}, []string{"metric", "kind"}),
	}
}

// Observe records one applied reading. Gauges keep their previous value
// when a metric could not be read.
func (e *Exporter) Observe(r feed.Reading) {
	e.ticks.Inc()
	e.record(collectors.MetricProcess, e.processCPU, r.Process, r.ProcessErr)
	e.record(collectors.MetricSystem, e.systemCPU, r.System, r.SystemErr)
}

func (e *Exporter) record(metric string, g prometheus.Gauge, v float64, err error) {
	if err != nil {
		kind := KindFailed
		if collectors.IsUnavailable(err) {
			kind = KindUnavailable
		}
		e.errors.WithLabelValues(metric, kind).Inc()
		return
	}
	g.Set(v)
}

// Registry exposes the underlying registry, mainly for tests.
func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Handler returns the /metrics handler for this exporter's registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// Serve listens on addr and serves /metrics until ctx is cancelled.
func (e *Exporter) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return e.serve(ctx, ln, logger)
}

func (e *Exporter) serve(ctx context.Context, ln net.Listener, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

var _ feed.Observer = (*Exporter)(nil)
