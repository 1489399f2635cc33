package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hydroponic"

const (
	// SourceHTTP readings posted to the REST API.
	SourceHTTP = "http"
	// SourceMQTT readings received from sensors over MQTT.
	SourceMQTT = "mqtt"
)

// Ingest rejection reasons.
const (
	RejectNotFound   = "not_found"
	RejectValidation = "validation"
	RejectError      = "error"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, partitioned by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	measurementsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_ingested_total",
			Help:      "Measurements stored, partitioned by ingestion source.",
		},
		[]string{"source"},
	)

	ingestRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_rejected_total",
			Help:      "Ingest calls that stored nothing, partitioned by reason.",
		},
		[]string{"reason"},
	)

	measurementPagesServedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurement_pages_served_total",
			Help:      "Measurement pages returned by the query path.",
		},
	)

	eventPublishFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "measurement.created events that could not be published.",
		},
	)
)

// Register attaches hydroponic collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		httpRequestsTotal,
		httpRequestDurationSeconds,
		measurementsIngestedTotal,
		ingestRejectedTotal,
		measurementPagesServedTotal,
		eventPublishFailuresTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(route, method string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	if duration < 0 {
		duration = 0
	}
	httpRequestDurationSeconds.WithLabelValues(route).Observe(duration.Seconds())
}

// AddIngested counts n stored measurements from source.
func AddIngested(source string, n int) {
	if n <= 0 {
		return
	}
	measurementsIngestedTotal.WithLabelValues(normalizeSource(source)).Add(float64(n))
}

// IncIngestRejected counts an ingest call that stored nothing.
func IncIngestRejected(reason string) {
	switch reason {
	case RejectNotFound, RejectValidation:
	default:
		reason = RejectError
	}
	ingestRejectedTotal.WithLabelValues(reason).Inc()
}

// IncPageServed counts one served measurement page.
func IncPageServed() {
	measurementPagesServedTotal.Inc()
}

// IncPublishFailure counts one failed event publish.
func IncPublishFailure() {
	eventPublishFailuresTotal.Inc()
}

func normalizeSource(source string) string {
	if source == SourceMQTT {
		return SourceMQTT
	}
	return SourceHTTP
}
