package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/thenaterhood/stubdns/app"
	"github.com/thenaterhood/stubdns/cache"
	"github.com/thenaterhood/stubdns/metrics"
	"github.com/thenaterhood/stubdns/models"
	"github.com/thenaterhood/stubdns/records"
	"github.com/thenaterhood/stubdns/resolver"
	"github.com/thenaterhood/stubdns/system"
	"github.com/thenaterhood/stubdns/transport"
)

func main() {
	conffile := flag.String("config", "./stubdns.json", "path to config file")
	server := flag.String("server", "", "query this nameserver instead of the configured list")
	qtypeName := flag.String("type", "A", "record type to query")
	useTcp := flag.Bool("tcp", false, "query over tcp")
	reverse := flag.Bool("x", false, "reverse lookup; operands are addresses")
	verbose := flag.Bool("verbose", false, "print transport events")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] name...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	config, err := app.GetConfig(*conffile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s not loaded - starting with defaults: %v\n", *conffile, err)
	}

	stdoutLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(config.LogLevel),
	}))

	appMetrics := metrics.GetMetrics(metrics.MetricsConfig{
		Enable: !config.DisableMetrics,
		Port:   config.MetricsPort,
		Logger: stdoutLogger,
	})

	appCache, cacheErr := cache.GetCache(cache.CacheConfig{
		Enable:  !config.DisableCache,
		Backend: config.CacheBackend,
		Logger:  stdoutLogger,
		Metrics: appMetrics,
	})
	if cacheErr != nil {
		stdoutLogger.Warn("failed to initialize cache - disabling caching", "err", cacheErr)
		appCache = &cache.DummyCache{}
	}

	state := app.AppState{
		Cache:   appCache,
		Log:     stdoutLogger,
		Metrics: appMetrics,
	}

	resolverConfig := resolver.Config{
		Servers:   config.DnsServers,
		Timeout:   config.Timeout,
		Retries:   config.Retries,
		Recursion: config.Recursion,
		Transport: config.TransportKind(),
		Logger:    state.Log,
		Metrics:   state.Metrics,
		Cache:     state.Cache,
	}
	if *useTcp {
		resolverConfig.Transport = transport.TCP
	}

	if config.RespectResolvConf {
		resolvconf, err := system.NewResolvConfFromPath(config.ResolvConfPath)
		if err != nil {
			state.Log.Warn("failed to read resolvconf", "error", err)
		} else {
			resolverConfig.ResolvConf = resolvconf
			resolverConfig.Discover = resolvconf.Endpoints
			resolvconf.Watch()
		}
	}

	res, err := resolver.New(resolverConfig)
	if err != nil {
		state.Log.Error("failed to build resolver", "err", err)
		os.Exit(1)
	}

	if *verbose {
		res.OnVerbose(func(msg string) {
			fmt.Fprintf(os.Stderr, ";; %s\n", msg)
		})
	}

	if *server != "" {
		if err := res.SetDnsServer(*server); err != nil {
			state.Log.Error("failed to set nameserver", "err", err)
			os.Exit(1)
		}
	}

	qtype, ok := records.TypeFromString(*qtypeName)
	if !ok {
		state.Log.Error("unknown record type", "type", *qtypeName)
		os.Exit(2)
	}

	failed := false
	for _, name := range flag.Args() {
		resp := lookupOne(res, name, qtype, *reverse)
		fmt.Print(resp.String())
		if resp.Error != "" {
			failed = true
		}
	}

	if failed {
		os.Exit(1)
	}
}

func lookupOne(res *resolver.Resolver, name string, qtype records.Type, reverse bool) *models.Response {
	if !reverse {
		return res.Query(name, qtype)
	}

	ip := net.ParseIP(name)
	if ip == nil {
		return models.ErrorResponse(fmt.Sprintf("not an ip address: %q", name), "")
	}
	arpa, err := resolver.ReverseName(ip)
	if err != nil {
		return models.ErrorResponse(err.Error(), "")
	}
	return res.Query(arpa, records.TypePTR)
}
