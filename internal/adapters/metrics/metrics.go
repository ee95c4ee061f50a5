// Package metrics exposes build outcomes as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

const shutdownTimeout = 5 * time.Second

var _ ports.Metrics = (*Metrics)(nil)

// Metrics holds the Prometheus collectors of one process on a private registry.
type Metrics struct {
	elementsTotal   *prometheus.CounterVec
	elementDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		elementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mason_elements_total",
				Help: "Elements that reached a terminal status",
			},
			[]string{"status"},
		),

		elementDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mason_element_duration_seconds",
				Help:    "Time from dispatch to terminal status",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
			},
			[]string{"status"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mason_cache_lookups_total",
				Help: "Artifact cache lookups by result",
			},
			[]string{"result"},
		),

		registry: registry,
	}

	registry.MustRegister(m.elementsTotal, m.elementDuration, m.cacheLookups)
	return m
}

// ElementFinished records an element reaching status after d.
func (m *Metrics) ElementFinished(status domain.ElementStatus, d time.Duration) {
	m.elementsTotal.WithLabelValues(string(status)).Inc()
	m.elementDuration.WithLabelValues(string(status)).Observe(d.Seconds())
}

// CacheLookup records a lookup outcome.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Handler returns the scrape handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Serve exposes /metrics on l until ctx is done.
func (m *Metrics) Serve(ctx context.Context, l net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: shutdownTimeout}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()

	select {
	case err := <-errCh:
		return zerr.Wrap(err, "metrics server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return zerr.Wrap(err, "failed to stop metrics server")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return zerr.Wrap(err, "metrics server stopped")
	}
	return nil
}
