package app

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/thenaterhood/stubdns/transport"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stubdns.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing config fixture: %v", err)
	}
	return path
}

func TestGetConfigDefaults(t *testing.T) {
	config, err := GetConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected an error for a missing file")
	}

	if config.Timeout != 1 || config.Retries != 3 {
		t.Errorf("defaults were %d/%d, expected timeout 1 retries 3", config.Timeout, config.Retries)
	}
	if config.TransportKind() != transport.UDP {
		t.Errorf("default transport is %s", config.TransportKind())
	}
	if config.DisableCache || config.DisableMetrics {
		t.Error("cache or metrics disabled by default")
	}
}

func TestGetConfig(t *testing.T) {
	path := writeConfig(t, `{
		"dns_servers": ["192.0.2.1", "192.0.2.2:5353"],
		"timeout": 5,
		"retries": 2,
		"transport": "tcp",
		"cache_backend": "bigcache",
		"log_level": -4
	}`)

	config, err := GetConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !slices.Equal(config.DnsServers, []string{"192.0.2.1", "192.0.2.2:5353"}) {
		t.Errorf("servers parsed as %v", config.DnsServers)
	}
	if config.Timeout != 5 || config.Retries != 2 {
		t.Errorf("timing parsed as %d/%d", config.Timeout, config.Retries)
	}
	if config.TransportKind() != transport.TCP {
		t.Errorf("transport parsed as %s", config.TransportKind())
	}
	if config.CacheBackend != "bigcache" {
		t.Errorf("cache backend parsed as %q", config.CacheBackend)
	}
}

func TestGetConfigClampsBounds(t *testing.T) {
	path := writeConfig(t, `{"timeout": 0, "retries": 0}`)

	config, err := GetConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Timeout != 1 {
		t.Errorf("timeout clamped to %d, expected 1", config.Timeout)
	}
	if config.Retries != 1 {
		t.Errorf("retries clamped to %d, expected 1", config.Retries)
	}
}

func TestGetConfigRejectsUnknownTransport(t *testing.T) {
	path := writeConfig(t, `{"transport": "carrier-pigeon"}`)

	if _, err := GetConfig(path); err == nil {
		t.Error("expected an error for an unknown transport")
	}
}
