package metrics

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry            *prometheus.Registry
	ListingsCreated     prometheus.Counter
	ListingUpdates      prometheus.Counter
	ListingDeletes      prometheus.Counter
	APIErrorsTotal      *prometheus.CounterVec
	APIRequestLatency   *prometheus.HistogramVec
	ImageUploadFailures prometheus.Counter
}

// NewMetricsManager creates and registers the collectors on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	ns := strings.ReplaceAll(serviceName, "-", "_")
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		ListingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		ListingUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "listing_updates_total",
			Help:      "Total number of listings updated.",
		}),
		ListingDeletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "listing_deletes_total",
			Help:      "Total number of listings soft-deleted.",
		}),
		APIErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "api_errors_total",
			Help:      "Total number of API errors by route and error kind.",
		}, []string{"route", "kind"}),
		APIRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "api_request_latency_seconds",
			Help:      "Latency of API requests by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		ImageUploadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "image_upload_failures_total",
			Help:      "Total number of image batches rolled back after an upload failure.",
		}),
	}

	registry.MustRegister(
		m.ListingsCreated,
		m.ListingUpdates,
		m.ListingDeletes,
		m.APIErrorsTotal,
		m.APIRequestLatency,
		m.ImageUploadFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *MetricsManager) ListingCreated() { m.ListingsCreated.Inc() }

func (m *MetricsManager) ListingUpdated() { m.ListingUpdates.Inc() }

func (m *MetricsManager) ListingDeleted() { m.ListingDeletes.Inc() }

func (m *MetricsManager) ImageUploadRolledBack() { m.ImageUploadFailures.Inc() }

// ObserveRequest records latency for a request and counts it as an error when kind is non-empty.
func (m *MetricsManager) ObserveRequest(route, method, kind string, elapsed time.Duration) {
	m.APIRequestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
	if kind != "" {
		m.APIErrorsTotal.WithLabelValues(route, kind).Inc()
	}
}

// NewMetricsServer returns an HTTP server exposing the registry at /metrics.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartMetricsServer blocks serving metrics until the server is shut down.
func StartMetricsServer(server *http.Server, appLogger *logger.Logger) error {
	appLogger.Info("Prometheus metrics server starting", zap.String("addr", server.Addr), zap.String("path", "/metrics"))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
