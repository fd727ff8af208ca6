package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricsConfig struct {
	Enable bool
	Port   int
	Logger *slog.Logger
}

type MetricsInterface interface {
	IncQueriesSent()
	IncQueriesAnsweredFromCache()
	IncQueriesTimedOut()
	IncTransportFailures()
	IncMalformedResponses()
	GetCacheReadTimer() *prometheus.Timer
	GetExchangeTimer() *prometheus.Timer
	ObserveTimer(*prometheus.Timer)
	Start() error
}

func GetMetrics(config MetricsConfig) MetricsInterface {
	if config.Enable {
		return newPrometheus(config)
	}
	return DummyMetrics{}
}
