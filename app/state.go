package app

import (
	"log/slog"

	"github.com/thenaterhood/stubdns/cache"
	"github.com/thenaterhood/stubdns/metrics"
)

// AppState carries the shared collaborators wired up at startup.
type AppState struct {
	Cache   cache.Cache
	Log     *slog.Logger
	Metrics metrics.MetricsInterface
}
