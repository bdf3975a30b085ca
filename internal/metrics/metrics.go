// Package metrics exposes Prometheus collectors for the fetch and render
// loops. The listener is optional; the collectors are always registered so
// enabling it later needs no code change.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	Fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucodeck_fetches_total",
			Help: "Remote fetch attempts by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glucodeck_fetch_duration_seconds",
			Help:    "Remote fetch latency by endpoint",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	Renders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glucodeck_renders_total",
			Help: "Button face renders by mode",
		},
		[]string{"mode"},
	)
)

var registerOnce sync.Once

// Register installs the collectors in the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Fetches, FetchDuration, Renders)
	})
}

// Serve runs the Prometheus endpoint on addr. Blocks; run in a goroutine.
func Serve(addr string, logger *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.WithField("addr", addr).Info("Starting metrics listener")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.WithError(err).Error("Metrics listener failed")
	}
}
