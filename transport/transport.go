// Package transport exchanges packed DNS requests with upstream
// servers over UDP or TCP, applying the retry and failover policy.
package transport

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/net/proxy"

	"github.com/thenaterhood/stubdns/metrics"
	"github.com/thenaterhood/stubdns/models"
)

// MaxUDPSize is the classic DNS datagram cap; EDNS buffer negotiation
// is not performed.
const MaxUDPSize = 512

// TimeoutError is the Error value of a synthesized response after
// every server and retry has been exhausted.
const TimeoutError = "Timeout Error"

// Kind selects the transport protocol.
type Kind uint8

const (
	UDP Kind = iota
	TCP
)

func (k Kind) String() string {
	switch k {
	case UDP:
		return "udp"
	case TCP:
		return "tcp"
	}
	return fmt.Sprintf("transport(%d)", uint8(k))
}

// KindFromString maps a config string to a transport kind.
func KindFromString(s string) (Kind, bool) {
	switch s {
	case "udp", "":
		return UDP, true
	case "tcp":
		return TCP, true
	}
	return UDP, false
}

type Config struct {
	// Timeout bounds each connect and receive, in seconds.
	Timeout int
	// Retries is the number of passes over the server list.
	Retries int
	Logger  *slog.Logger
	Metrics metrics.MetricsInterface
	// Dialer is used by the TCP transport; nil means a plain
	// net.Dialer. Callers can route transfers through SOCKS or a
	// custom dialer by supplying one.
	Dialer proxy.ContextDialer
	// Verbose receives human-readable failure event strings. May be
	// nil.
	Verbose func(string)
}

// Transport performs one exchange, iterating the server list in order
// within each retry. It never returns nil: exhaustion yields a
// synthesized timeout response.
type Transport interface {
	Exchange(req *models.Request, servers []string) *models.Response
}

// New returns the transport for kind.
func New(kind Kind, config Config) Transport {
	config = config.withDefaults()
	switch kind {
	case TCP:
		return &tcpTransport{config}
	default:
		return &udpTransport{config}
	}
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.DummyMetrics{}
	}
	if c.Dialer == nil {
		c.Dialer = &net.Dialer{}
	}
	if c.Timeout < 1 {
		c.Timeout = 1
	}
	if c.Retries < 1 {
		c.Retries = 1
	}
	return c
}

func (c Config) timeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// fail records a per-server failure: verbose observers and the warn
// log, off the response path.
func (c Config) fail(server string, err error) {
	c.Metrics.IncTransportFailures()
	c.Logger.Warn("exchange with server failed - will try next", "server", server, "error", err)
	if c.Verbose != nil {
		c.Verbose(fmt.Sprintf("connection to nameserver %s failed: %v", server, err))
	}
}

// checkId enforces that a parsed reply answers the outstanding
// request. A mismatched id is treated like any other per-server
// failure so an off-path spoofed reply cannot satisfy the query.
func checkId(req *models.Request, resp *models.Response) error {
	if resp.Error == "" && resp.Header.Id != req.Header.Id {
		return fmt.Errorf("transaction id mismatch: sent %d, received %d",
			req.Header.Id, resp.Header.Id)
	}
	return nil
}
