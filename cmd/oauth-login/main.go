// Command oauth-login signs a desktop user in through the system browser and
// keeps the resulting session in Redis.
//
// BASE_URL, OAUTH_REDIRECT_URL, PLATFORM and API_BEARER_TOKEN are read from
// the environment. OAUTH_REDIRECT_URL must be a loopback URL with an explicit
// port, for example http://127.0.0.1:8765/callback.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/buildparam"
	"github.com/MrEthical07/goAuthClient/keycloak"
	promexport "github.com/MrEthical07/goAuthClient/metrics/export/prometheus"
	"github.com/MrEthical07/goAuthClient/session"
	"github.com/MrEthical07/goAuthClient/useragent/loopback"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		logout      = flag.Bool("logout", false, "log out instead of logging in")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "oauth", "session key prefix")
		sessionTTL  = flag.Duration("session-ttl", 24*time.Hour, "local session lifetime; 0 keeps sessions until logout")
		envPrefix   = flag.String("env-prefix", "", "prefix of the environment variables to read")
		timeout     = flag.Duration("timeout", 5*time.Minute, "overall time allowed for the browser round trip")
		metricsAddr = flag.String("metrics-addr", "", "serve prometheus metrics on this address while running")
		audit       = flag.Bool("audit", false, "write audit events as JSON lines to stderr")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(logger, options{
		logout:      *logout,
		redisAddr:   *redisAddr,
		prefix:      *prefix,
		sessionTTL:  *sessionTTL,
		envPrefix:   *envPrefix,
		timeout:     *timeout,
		metricsAddr: *metricsAddr,
		audit:       *audit,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "oauth-login: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	logout      bool
	redisAddr   string
	prefix      string
	sessionTTL  time.Duration
	envPrefix   string
	timeout     time.Duration
	metricsAddr string
	audit       bool
}

func run(logger *slog.Logger, opts options) error {
	params, err := buildparam.NewProvider(opts.envPrefix).Params()
	if err != nil {
		return err
	}

	client, cleanup, err := openRedis(logger, opts.redisAddr)
	if err != nil {
		return err
	}
	defer cleanup()

	keeper := session.NewKeeper(session.NewStore(client, opts.prefix), opts.sessionTTL)

	cfg := goAuthClient.DefaultConfig()
	cfg.Platform = goAuthClient.Platform(params.Platform)
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Audit.Enabled = opts.audit
	if params.BearerToken == "" {
		cfg.LoginTime.Enabled = false
		logger.Info("API_BEARER_TOKEN not set; login time updates disabled")
	}

	for _, w := range cfg.Lint().BySeverity(goAuthClient.LintWarn) {
		logger.Warn("config lint", "code", w.Code, "severity", w.Severity.String(), "message", w.Message)
	}

	tabs, err := loopback.New(params.RedirectURL, loopback.SystemOpener(), loopback.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = tabs.Close(context.Background()) }()

	exchanger, err := keycloak.New(params.BaseURL, cfg.Endpoint.Realm, string(cfg.Platform), params.RedirectURL)
	if err != nil {
		return err
	}

	builder := goAuthClient.New().
		WithConfig(cfg).
		WithConfigProvider(params.Values()).
		WithTokenExchanger(exchanger).
		WithSessionLifecycle(keeper).
		WithCustomTabs(tabs).
		WithLogger(logger).
		WithAuditSink(goAuthClient.NewJSONWriterSink(os.Stderr))
	if params.BearerToken != "" {
		token := params.BearerToken
		builder = builder.WithBearerTokenSource(goAuthClient.BearerTokenFunc(func(context.Context) (string, error) {
			return token, nil
		}))
	}

	coordinator, err := builder.Build()
	if err != nil {
		return err
	}
	defer coordinator.Close()

	if opts.metricsAddr != "" {
		stop, err := serveMetrics(logger, opts.metricsAddr, coordinator)
		if err != nil {
			return err
		}
		defer stop()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx, cancelTimeout := context.WithTimeout(ctx, opts.timeout)
	defer cancelTimeout()

	if opts.logout {
		if err := coordinator.LogOut(ctx); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	}

	result, err := coordinator.Login(ctx, goAuthClient.AuthorizeOptions{})
	if err != nil {
		return err
	}

	fmt.Printf("logged in as %s via %s\n", result.Tokens.UserID, result.Strategy)
	if result.LoginTime.Attempted && result.LoginTime.Err != nil {
		fmt.Printf("login time update failed: %v\n", result.LoginTime.Err)
	}

	current, err := keeper.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("session %s stored\n", current.SessionID)
	return nil
}

func openRedis(logger *slog.Logger, addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		logger.Info("using in-memory redis; the session will not outlive this process", "addr", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	logger.Info("using redis", "addr", addr)
	return client, func() { _ = client.Close() }, nil
}

func serveMetrics(logger *slog.Logger, addr string, coordinator *goAuthClient.Coordinator) (func(), error) {
	exporter, err := promexport.NewPrometheusExporter(coordinator)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", exporter.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
