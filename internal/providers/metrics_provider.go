package providers

import (
	"net/http"
	"reployer/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	IncPolls(status string)
	ObserveQueryDuration(duration time.Duration)
	SetPlayers(count int)
	IncEvents(kind string)
	IncHistoryWriteErrors()
	ObserveRotationDuration(duration time.Duration)
	SetStreamClients(count int)
	Handler() http.Handler
}

type MetricsProvider struct {
	registry         *prometheus.Registry
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	pollsTotal       *prometheus.CounterVec
	queryDuration    prometheus.Histogram
	players          prometheus.Gauge
	eventsTotal      *prometheus.CounterVec
	historyErrors    prometheus.Counter
	rotationDuration prometheus.Histogram
	streamClients    prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) IncPolls(status string) {
	m.pollsTotal.WithLabelValues(status).Inc()
}

func (m *MetricsProvider) ObserveQueryDuration(duration time.Duration) {
	m.queryDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetPlayers(count int) {
	m.players.Set(float64(count))
}

func (m *MetricsProvider) IncEvents(kind string) {
	m.eventsTotal.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncHistoryWriteErrors() {
	m.historyErrors.Inc()
}

func (m *MetricsProvider) ObserveRotationDuration(duration time.Duration) {
	m.rotationDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) SetStreamClients(count int) {
	m.streamClients.Set(float64(count))
}

func (m *MetricsProvider) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &MetricsProvider{
		registry: reg,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reployer_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reployer_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "reployer_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "reployer_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		pollsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reployer_polls_total",
			Help: "Server status queries by outcome",
		}, []string{"status"}),

		queryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reployer_query_duration_seconds",
			Help:    "Duration of server status queries in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		players: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reployer_players",
			Help: "Player count of the last observation",
		}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reployer_events_total",
			Help: "Fired notification events by kind",
		}, []string{"kind"}),

		historyErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "reployer_history_write_errors_total",
			Help: "Failed appends to the history log",
		}),

		rotationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reployer_history_rotation_duration_seconds",
			Help:    "Duration of history log rotations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		streamClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "reployer_stream_clients",
			Help: "Connected snapshot stream clients",
		}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) IncPolls(_ string)                                {}
func (n *noopMetrics) ObserveQueryDuration(_ time.Duration)             {}
func (n *noopMetrics) SetPlayers(_ int)                                 {}
func (n *noopMetrics) IncEvents(_ string)                               {}
func (n *noopMetrics) IncHistoryWriteErrors()                           {}
func (n *noopMetrics) ObserveRotationDuration(_ time.Duration)          {}
func (n *noopMetrics) SetStreamClients(_ int)                           {}
func (n *noopMetrics) Handler() http.Handler                            { return http.NotFoundHandler() }
