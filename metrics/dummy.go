package metrics

import "github.com/prometheus/client_golang/prometheus"

type DummyMetrics struct{}

func (ds DummyMetrics) IncQueriesSent()                      {}
func (ds DummyMetrics) IncQueriesAnsweredFromCache()         {}
func (ds DummyMetrics) IncQueriesTimedOut()                  {}
func (ds DummyMetrics) IncTransportFailures()                {}
func (ds DummyMetrics) IncMalformedResponses()               {}
func (ds DummyMetrics) GetCacheReadTimer() *prometheus.Timer { return nil }
func (ds DummyMetrics) GetExchangeTimer() *prometheus.Timer  { return nil }
func (ds DummyMetrics) ObserveTimer(_ *prometheus.Timer)     {}
func (ds DummyMetrics) Start() error                         { return nil }
