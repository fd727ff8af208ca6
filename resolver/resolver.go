// Package resolver is the query engine: it normalizes the question,
// consults the cache, builds the request, dispatches it over the
// configured transport and stores successful answers.
package resolver

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	"golang.org/x/net/proxy"

	"github.com/thenaterhood/stubdns/cache"
	"github.com/thenaterhood/stubdns/metrics"
	"github.com/thenaterhood/stubdns/models"
	"github.com/thenaterhood/stubdns/records"
	"github.com/thenaterhood/stubdns/system"
	"github.com/thenaterhood/stubdns/transport"
)

type Config struct {
	// Servers are upstream endpoints, tried strictly in order. An
	// entry without a port gets :53. Empty means Discover supplies
	// the list.
	Servers []string
	// Timeout bounds each connect/receive, in seconds. Default 1.
	Timeout int
	// Retries is the number of passes over the server list.
	// Default 3, minimum 1.
	Retries int
	// Recursion sets the RD bit on outgoing queries. Default true
	// (this is a stub resolver; upstream does the walking).
	Recursion *bool
	// Transport selects UDP or TCP. Default UDP.
	Transport transport.Kind
	// UseCache enables the response cache. Default true.
	UseCache *bool
	// Discover supplies servers when Servers is empty.
	Discover func() []string
	// ResolvConf, when set, supplies search-list qualification for
	// LookupHost.
	ResolvConf *system.ResolvConf

	Logger  *slog.Logger
	Metrics metrics.MetricsInterface
	Cache   cache.Cache
	Dialer  proxy.ContextDialer
}

type Resolver struct {
	mu        sync.Mutex
	servers   []string
	useCache  bool
	recursion bool
	timeout   int
	retries   int
	kind      transport.Kind
	verbose   []func(string)

	resolvConf *system.ResolvConf
	cache      cache.Cache
	metrics    metrics.MetricsInterface
	logger     *slog.Logger
	dialer     proxy.ContextDialer

	seq atomic.Uint32
}

func New(config Config) (*Resolver, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.DummyMetrics{}
	}
	if config.Timeout < 1 {
		config.Timeout = 1
	}
	if config.Retries < 1 {
		config.Retries = 3
	}

	useCache := config.UseCache == nil || *config.UseCache
	if config.Cache == nil {
		var err error
		config.Cache, err = cache.GetCache(cache.CacheConfig{
			Enable:  useCache,
			Logger:  config.Logger,
			Metrics: config.Metrics,
		})
		if err != nil {
			return nil, err
		}
	}

	servers := config.Servers
	if len(servers) == 0 && config.Discover != nil {
		servers = config.Discover()
	}

	r := &Resolver{
		servers:    normalizeServers(servers),
		useCache:   useCache,
		recursion:  config.Recursion == nil || *config.Recursion,
		timeout:    config.Timeout,
		retries:    config.Retries,
		kind:       config.Transport,
		resolvConf: config.ResolvConf,
		cache:      config.Cache,
		metrics:    config.Metrics,
		logger:     config.Logger,
		dialer:     config.Dialer,
	}
	return r, nil
}

// Query resolves qname/qtype in the IN class.
func (r *Resolver) Query(qname string, qtype records.Type) *models.Response {
	return r.QueryClass(qname, qtype, records.ClassIN)
}

// QueryClass resolves a single question. Failures of any kind come
// back as a response with Error set or a non-NoError rcode, never as a
// panic or a Go error.
func (r *Resolver) QueryClass(qname string, qtype records.Type, qclass records.Class) *models.Response {
	question := models.Question{
		Name:  fqdn(qname),
		Type:  qtype,
		Class: qclass,
	}

	r.mu.Lock()
	servers := make([]string, len(r.servers))
	copy(servers, r.servers)
	useCache := r.useCache
	recursion := r.recursion
	kind := r.kind
	store := r.cache
	r.mu.Unlock()

	if useCache {
		if hit, err := store.Fetch(question); err != nil {
			r.logger.Warn("cache read failed", "error", err)
		} else if hit != nil {
			r.logger.Debug("answered from cache", "qname", question.Name, "qtype", question.Type)
			r.metrics.IncQueriesAnsweredFromCache()
			return hit
		}
	}

	if len(servers) == 0 {
		return models.ErrorResponse("no dns servers configured", "")
	}
	if kind != transport.UDP && kind != transport.TCP {
		return models.ErrorResponse(fmt.Sprintf("unknown transport type %d", kind), "")
	}

	req := models.NewRequest(r.nextId(), recursion)
	req.AddQuestion(question)

	timer := r.metrics.GetExchangeTimer()
	defer r.metrics.ObserveTimer(timer)
	r.metrics.IncQueriesSent()

	resp := transport.New(kind, transport.Config{
		Timeout: r.timeout,
		Retries: r.retries,
		Logger:  r.logger,
		Metrics: r.metrics,
		Dialer:  r.dialer,
		Verbose: r.emitVerbose,
	}).Exchange(req, servers)

	if useCache && resp.IsSuccess() {
		if err := store.Store(resp); err != nil {
			r.logger.Warn("cache write failed", "error", err)
		}
	}
	return resp
}

// SetUseCache toggles caching. Disabling drops the store.
func (r *Resolver) SetUseCache(use bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.useCache = use
	if !use {
		r.cache.Clear()
	}
}

// SetTransport switches between UDP and TCP for subsequent queries.
func (r *Resolver) SetTransport(kind transport.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kind = kind
}

// SetDnsServers replaces the server list.
func (r *Resolver) SetDnsServers(servers []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers = normalizeServers(servers)
}

// SetDnsServer makes server the sole upstream. A value that is not an
// IP address is taken as a hostname and resolved with an A query
// against the currently configured servers; the first answer wins.
func (r *Resolver) SetDnsServer(server string) error {
	if ip := net.ParseIP(server); ip != nil {
		r.SetDnsServers([]string{server})
		return nil
	}
	if host, _, err := net.SplitHostPort(server); err == nil && net.ParseIP(host) != nil {
		r.SetDnsServers([]string{server})
		return nil
	}

	resp := r.Query(server, records.TypeA)
	if resp.Error != "" {
		return fmt.Errorf("resolving nameserver %q: %s", server, resp.Error)
	}
	for _, rr := range resp.Answers {
		if a, ok := rr.Data.(*records.A); ok {
			r.SetDnsServers([]string{a.Address.String()})
			return nil
		}
	}
	return fmt.Errorf("nameserver %q did not resolve to an address", server)
}

// Servers returns the current upstream endpoints.
func (r *Resolver) Servers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.servers))
	copy(out, r.servers)
	return out
}

// OnVerbose registers a listener for human-readable transport event
// strings.
func (r *Resolver) OnVerbose(fn func(string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verbose = append(r.verbose, fn)
}

func (r *Resolver) emitVerbose(msg string) {
	r.mu.Lock()
	listeners := r.verbose
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(msg)
	}
}

// nextId returns the strictly increasing 16-bit transaction id.
func (r *Resolver) nextId() uint16 {
	return uint16(r.seq.Add(1))
}

func fqdn(name string) string {
	if name == "" {
		return "."
	}
	if name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

func normalizeServers(servers []string) []string {
	out := make([]string, 0, len(servers))
	for _, s := range servers {
		if _, _, err := net.SplitHostPort(s); err == nil {
			out = append(out, s)
			continue
		}
		out = append(out, net.JoinHostPort(s, "53"))
	}
	return out
}
