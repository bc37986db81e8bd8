package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	reqCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartticket",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		},
		[]string{"service", "path", "method", "status"},
	)
	reqLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartticket",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "path", "method"},
	)
	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartticket",
			Name:      "events_published_total",
			Help:      "Events published to the tickets exchange",
		},
		[]string{"service", "event_type", "outcome"},
	)
	eventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartticket",
			Name:      "events_consumed_total",
			Help:      "Events consumed from bound queues",
		},
		[]string{"service", "queue", "outcome"},
	)
	metricsRegistered bool
)

// InitMetrics launches a /metrics HTTP endpoint if addr not empty.
func InitMetrics(service, addr string, logger *zap.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	if !metricsRegistered {
		prometheus.MustRegister(reqCounter, reqLatency, eventsPublished, eventsConsumed)
		metricsRegistered = true
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
	logger.Info("metrics server listening", zap.String("addr", addr), zap.String("service", service))
	return srv
}

// RecordRequest counts one handled HTTP request.
func RecordRequest(service, path, method string, status int, duration time.Duration) {
	reqCounter.WithLabelValues(service, path, method, strconv.Itoa(status)).Inc()
	reqLatency.WithLabelValues(service, path, method).Observe(duration.Seconds())
}

// RecordEventPublished counts one publish attempt outcome.
func RecordEventPublished(service, eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	eventsPublished.WithLabelValues(service, eventType, outcome).Inc()
}

// RecordEventConsumed counts one delivery outcome: "ok", "dropped" or
// "duplicate".
func RecordEventConsumed(service, queue, outcome string) {
	eventsConsumed.WithLabelValues(service, queue, outcome).Inc()
}
