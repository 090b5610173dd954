package goAuthClient

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrEthical07/goAuthClient/backend"
	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/useragent"
)

// Builder defines a public type used by goAuthClient APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	configProvider ConfigProvider
	exchanger      TokenExchanger
	sessions       SessionLifecycle
	bearer         BearerTokenSource
	profiles       ProfileFetcher
	loginTime      LoginTimeTransport

	customTabs useragent.CustomTabs
	webView    useragent.WebView

	decoder   jwt.Decoder
	logger    *slog.Logger
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New starts from [DefaultConfig]; collaborators are attached with the With* methods.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig stores a deep copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithConfigProvider sets the source of BASE_URL and OAUTH_REDIRECT_URL. Required.
func (b *Builder) WithConfigProvider(p ConfigProvider) *Builder {
	b.configProvider = p
	return b
}

// WithTokenExchanger sets the code-for-token collaborator. Required.
func (b *Builder) WithTokenExchanger(x TokenExchanger) *Builder {
	b.exchanger = x
	return b
}

// WithSessionLifecycle sets the local session owner. Required.
func (b *Builder) WithSessionLifecycle(s SessionLifecycle) *Builder {
	b.sessions = s
	return b
}

// WithBearerTokenSource sets the API bearer token source. Required while
// LoginTime is enabled.
func (b *Builder) WithBearerTokenSource(s BearerTokenSource) *Builder {
	b.bearer = s
	return b
}

// WithProfileFetcher sets the best-effort profile loader. Without one the
// profile step is skipped.
func (b *Builder) WithProfileFetcher(p ProfileFetcher) *Builder {
	b.profiles = p
	return b
}

// WithLoginTimeTransport replaces the default resty-backed [backend.Client].
func (b *Builder) WithLoginTimeTransport(t LoginTimeTransport) *Builder {
	b.loginTime = t
	return b
}

// WithCustomTabs sets the preferred user agent.
func (b *Builder) WithCustomTabs(tabs useragent.CustomTabs) *Builder {
	b.customTabs = tabs
	return b
}

// WithWebView sets the fallback user agent used when custom tabs are unavailable.
func (b *Builder) WithWebView(webview useragent.WebView) *Builder {
	b.webView = webview
	return b
}

// WithDecoder replaces the base64url payload decoder.
func (b *Builder) WithDecoder(decode jwt.Decoder) *Builder {
	b.decoder = decode
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// The sink only receives events while Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build validates the configuration and collaborators, wires defaults and
// starts endpoint resolution in the background. A Builder can be built once.
func (b *Builder) Build() (*Coordinator, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.configProvider == nil {
		return nil, errors.New("config provider required")
	}
	if b.exchanger == nil {
		return nil, errors.New("token exchanger required")
	}
	if b.sessions == nil {
		return nil, errors.New("session lifecycle required")
	}
	if b.customTabs == nil && b.webView == nil {
		return nil, errors.New("custom tabs or web view required")
	}
	if cfg.LoginTime.Enabled && b.bearer == nil {
		return nil, errors.New("LoginTime requires a bearer token source")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Coordinator{
		config:         cfg,
		logger:         logger,
		configProvider: b.configProvider,
		exchanger:      b.exchanger,
		sessions:       b.sessions,
		bearer:         b.bearer,
		profiles:       b.profiles,
		loginTime:      b.loginTime,
		tabs:           b.customTabs,
		decode:         b.decoder,
	}

	if c.loginTime == nil && cfg.LoginTime.Enabled {
		c.loginTime = backend.New(backend.WithTimeout(cfg.LoginTime.Timeout))
	}
	if c.decode == nil {
		c.decode = jwt.SegmentDecoder
	}

	// The fallback presenters stay nil interfaces without a web view so that
	// useragent.Select reports unavailability.
	if b.webView != nil {
		c.loginView = useragent.NewWebViewPresenter(b.webView,
			useragent.WithWindow(cfg.Browser.LoginTarget, cfg.Browser.LoginOptions),
			useragent.WithLogger(logger),
		)
		c.logoutView = useragent.NewWebViewPresenter(b.webView,
			useragent.WithWindow(cfg.Browser.LogoutTarget, cfg.Browser.LogoutOptions),
			useragent.WithLogger(logger),
		)
	}

	c.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	c.metrics = NewMetrics(cfg.Metrics)

	resolveCtx, cancel := context.WithCancel(context.Background())
	c.stopResolve = cancel
	c.resolver = startEndpointResolver(resolveCtx, b.configProvider, cfg)

	b.built = true

	return c, nil
}
