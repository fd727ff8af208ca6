package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/thenaterhood/stubdns/cache"
	"github.com/thenaterhood/stubdns/transport"
)

type AppConfig struct {
	// Upstream servers, tried strictly in order. Entries without a
	// port get :53.
	DnsServers []string `json:"dns_servers"`
	// Per-attempt socket timeout in seconds.
	Timeout int `json:"timeout"`
	// Passes over the server list before giving up.
	Retries int `json:"retries"`
	// Ask the upstream to recurse. Stub resolvers want this on;
	// leave it unset to keep the default.
	Recursion *bool `json:"recursion"`
	// "udp" or "tcp".
	Transport string `json:"transport"`
	// Disable the response cache.
	DisableCache bool `json:"disable_cache"`
	// "memory" (default) or "bigcache".
	CacheBackend   string `json:"cache_backend"`
	DisableMetrics bool   `json:"disable_metrics"`
	MetricsPort    int    `json:"metrics_port"`
	LogLevel       int    `json:"log_level"`
	// Fall back to the system resolv.conf when dns_servers is
	// empty, and use its search list for host lookups.
	RespectResolvConf bool   `json:"respect_resolvconf"`
	ResolvConfPath    string `json:"resolvconf_path"`
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Timeout:        1,
		Retries:        3,
		Transport:      "udp",
		CacheBackend:   cache.BackendMemory,
		MetricsPort:    2112,
		ResolvConfPath: "/etc/resolv.conf",
	}
}

func (cfg *AppConfig) prepare() error {
	if cfg.Timeout < 1 {
		cfg.Timeout = 1
	}
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	if _, ok := transport.KindFromString(cfg.Transport); !ok {
		return fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	switch cfg.CacheBackend {
	case "", cache.BackendMemory, cache.BackendBigCache:
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}
	if cfg.MetricsPort < 1 {
		cfg.MetricsPort = 2112
	}
	if cfg.ResolvConfPath == "" {
		cfg.ResolvConfPath = "/etc/resolv.conf"
	}
	return nil
}

// TransportKind returns the validated transport selection.
func (cfg *AppConfig) TransportKind() transport.Kind {
	kind, _ := transport.KindFromString(cfg.Transport)
	return kind
}

// GetConfig loads configuration from a JSON file, falling back to
// defaults when the file is absent.
func GetConfig(path string) (*AppConfig, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}

	if err := json.Unmarshal(data, config); err != nil {
		return defaultConfig(), err
	}

	if err := config.prepare(); err != nil {
		return defaultConfig(), err
	}

	return config, nil
}
