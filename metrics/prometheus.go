package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PrometheusMetrics struct {
	queriesSent              prometheus.Counter
	queriesAnsweredFromCache prometheus.Counter
	queriesTimedOut          prometheus.Counter
	transportFailures        prometheus.Counter
	malformedResponses       prometheus.Counter
	queryResponseTime        prometheus.HistogramVec

	config MetricsConfig
}

func (ms PrometheusMetrics) IncQueriesSent() {
	ms.queriesSent.Inc()
}

func (ms PrometheusMetrics) IncQueriesAnsweredFromCache() {
	ms.queriesAnsweredFromCache.Inc()
}

func (ms PrometheusMetrics) IncQueriesTimedOut() {
	ms.queriesTimedOut.Inc()
}

func (ms PrometheusMetrics) IncTransportFailures() {
	ms.transportFailures.Inc()
}

func (ms PrometheusMetrics) IncMalformedResponses() {
	ms.malformedResponses.Inc()
}

func (ms PrometheusMetrics) GetCacheReadTimer() *prometheus.Timer {
	return prometheus.NewTimer(ms.queryResponseTime.WithLabelValues("cache_read"))
}

func (ms PrometheusMetrics) GetExchangeTimer() *prometheus.Timer {
	return prometheus.NewTimer(ms.queryResponseTime.WithLabelValues("exchange"))
}

func (ms PrometheusMetrics) ObserveTimer(timer *prometheus.Timer) {
	if timer != nil {
		timer.ObserveDuration()
	}
}

func (s PrometheusMetrics) Start() error {

	if s.config.Enable {
		go func() {
			s.config.Logger.Info("Starting prometheus metrics", "port", s.config.Port, "endpoint", "/metrics")
			http.Handle("/metrics", promhttp.Handler())
			http.ListenAndServe(fmt.Sprintf(":%d", s.config.Port), nil)
		}()
	}

	return nil
}

func newPrometheus(config MetricsConfig) PrometheusMetrics {
	return PrometheusMetrics{
		queriesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stubdns_queries_sent",
			Help: "The total number of queries dispatched upstream since last start",
		}),
		queriesAnsweredFromCache: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stubdns_queries_answered_from_cache",
			Help: "The total number of queries answered from the cache since last start",
		}),
		queryResponseTime: *promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:      "stubdns_duration_seconds",
			Help:      "Response time of DNS queries",
			Namespace: "stubdns",
		}, []string{"action"}),
		queriesTimedOut: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stubdns_queries_timed_out",
			Help: "The number of queries that exhausted every server and retry",
		}),
		transportFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stubdns_transport_failures",
			Help: "The number of per-server send or receive failures",
		}),
		malformedResponses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stubdns_malformed_responses",
			Help: "The number of replies that failed wire format decoding",
		}),
		config: config,
	}
}
