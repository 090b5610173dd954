package goAuthClient

import (
	"context"
	"io"

	"github.com/MrEthical07/goAuthClient/backend"
	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	internalmetrics "github.com/MrEthical07/goAuthClient/internal/metrics"
	"github.com/MrEthical07/goAuthClient/useragent"
)

/*
====================================
COLLABORATORS
====================================
*/

// ConfigProvider resolves build-time configuration values such as BASE_URL
// and OAUTH_REDIRECT_URL.
type ConfigProvider interface {
	ConfigValue(ctx context.Context, key string) (string, error)
}

// TokenExchanger exchanges an authorization code for a JSON token payload
// carrying access_token and refresh_token.
type TokenExchanger interface {
	CreateSession(ctx context.Context, code string) ([]byte, error)
}

// SessionLifecycle owns the local authenticated session.
type SessionLifecycle interface {
	StartSession(ctx context.Context, accessToken, refreshToken, userID string) error
	EndSession(ctx context.Context) error
}

// BearerTokenSource yields the application's API bearer token.
type BearerTokenSource interface {
	BearerToken(ctx context.Context) (string, error)
}

// BearerTokenFunc adapts a function to [BearerTokenSource].
type BearerTokenFunc func(ctx context.Context) (string, error)

func (f BearerTokenFunc) BearerToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// ProfileFetcher loads the signed-in user's profile. Its outcome never
// affects login.
type ProfileFetcher interface {
	GetUserProfileDetails(ctx context.Context, req ProfileFetchRequest) error
}

// LoginTimeTransport sends the login-time update to endpoint.
// [backend.Client] is the default implementation.
type LoginTimeTransport interface {
	UpdateLoginTime(ctx context.Context, endpoint string, req LoginTimeRequest) error
}

/*
====================================
VALUE TYPES
====================================
*/

// EndpointConfig holds the resolved endpoint values. It is only observable
// after both configuration values resolved.
type EndpointConfig struct {
	BaseURL          string
	RedirectURI      string
	AuthorizationURL string
	LogoutURL        string
}

// AuthorizeOptions tunes [Coordinator.RequestAuthorizationCode].
type AuthorizeOptions struct {
	// RTL flips the login page to right-to-left once it first loads. Only the
	// web view honours it.
	RTL bool
}

// AuthorizationResult is the outcome of the authorization step.
type AuthorizationResult struct {
	Code        string
	CallbackURL string
	Strategy    useragent.Strategy
}

// TokenBundle holds the tokens of a started session.
type TokenBundle struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// ProfileFetchRequest names the user and the profile fields to load.
type ProfileFetchRequest struct {
	UserID         string
	RequiredFields []string
}

// LoginTimeRequest carries the credentials and subject of a login-time update.
type LoginTimeRequest = backend.LoginTimeRequest

// BestEffort reports a sub-task whose failure does not fail login.
type BestEffort struct {
	Attempted bool
	Err       error
}

// Succeeded reports whether the sub-task ran without error.
func (b BestEffort) Succeeded() bool {
	return b.Attempted && b.Err == nil
}

// LoginResult is returned by [Coordinator.ExchangeCodeForSession] and
// [Coordinator.Login].
type LoginResult struct {
	Tokens       TokenBundle
	Strategy     useragent.Strategy
	ProfileFetch BestEffort
	LoginTime    BestEffort
}

/*
====================================
AUDIT
====================================
*/

// AuditEvent is one audited step of an authorization flow.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink forwards audit events to a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

/*
====================================
METRICS
====================================
*/

// MetricID identifies a counter or histogram in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricAuthorizeSuccess     = MetricID(internalmetrics.MetricAuthorizeSuccess)
	MetricAuthorizeFailure     = MetricID(internalmetrics.MetricAuthorizeFailure)
	MetricAuthorizeCanceled    = MetricID(internalmetrics.MetricAuthorizeCanceled)
	MetricRedirectParseFailure = MetricID(internalmetrics.MetricRedirectParseFailure)
	MetricTokenExchangeFailure = MetricID(internalmetrics.MetricTokenExchangeFailure)
	MetricPayloadDecodeFailure = MetricID(internalmetrics.MetricPayloadDecodeFailure)
	MetricSessionStartFailure  = MetricID(internalmetrics.MetricSessionStartFailure)
	MetricSessionStarted       = MetricID(internalmetrics.MetricSessionStarted)
	MetricProfileFetchFailure  = MetricID(internalmetrics.MetricProfileFetchFailure)
	MetricLoginTimeSuccess     = MetricID(internalmetrics.MetricLoginTimeSuccess)
	MetricLoginTimeFailure     = MetricID(internalmetrics.MetricLoginTimeFailure)
	MetricLogoutSuccess        = MetricID(internalmetrics.MetricLogoutSuccess)
	MetricLogoutFailure        = MetricID(internalmetrics.MetricLogoutFailure)
	MetricLogoutCanceled       = MetricID(internalmetrics.MetricLogoutCanceled)
	MetricConfigUnresolved     = MetricID(internalmetrics.MetricConfigUnresolved)
	MetricFlowInProgress       = MetricID(internalmetrics.MetricFlowInProgress)
	// MetricTokenExchangeLatency is the only histogram.
	MetricTokenExchangeLatency = MetricID(internalmetrics.MetricTokenExchangeLatency)
)

// Metrics holds atomic counters and the optional latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] configured by cfg. When Enabled is false,
// all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
