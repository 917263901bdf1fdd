package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics holds the Prometheus instruments for the stage workers.
type WorkerMetrics struct {
	EventsProcessed *prometheus.CounterVec
	EventsSkipped   *prometheus.CounterVec
	Failures        *prometheus.CounterVec
	Retries         *prometheus.CounterVec
	StageDuration   *prometheus.HistogramVec

	registry *prometheus.Registry
}

func NewWorkerMetrics() *WorkerMetrics {
	m := &WorkerMetrics{
		EventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docstream",
			Name:      "events_processed_total",
			Help:      "Events processed successfully per stage",
		}, []string{"stage"}),

		EventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docstream",
			Name:      "events_skipped_total",
			Help:      "Events short-circuited by the idempotency check",
		}, []string{"stage"}),

		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docstream",
			Name:      "failures_total",
			Help:      "Failures escalated to the error topic",
		}, []string{"stage", "kind"}),

		Retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docstream",
			Name:      "retries_total",
			Help:      "Local retry attempts for transient failures",
		}, []string{"stage"}),

		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docstream",
			Name:      "stage_duration_seconds",
			Help:      "Time to process one event, including local retries",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),

		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.EventsProcessed,
		m.EventsSkipped,
		m.Failures,
		m.Retries,
		m.StageDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// ObserveStage records the duration of one event handled by a stage.
func (m *WorkerMetrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Serve exposes /metrics on addr until ctx is done. Blocks; run on its own
// goroutine. A listen failure is returned so the caller can stop the worker
// instead of running blind.
func (m *WorkerMetrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
