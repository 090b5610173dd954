package goAuthClient

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	internalaudit "github.com/MrEthical07/goAuthClient/internal/audit"
	"github.com/MrEthical07/goAuthClient/internal/flows"
	"github.com/MrEthical07/goAuthClient/jwt"
	"github.com/MrEthical07/goAuthClient/useragent"
)

// Coordinator defines a public type used by goAuthClient APIs.
//
// Coordinator drives the two-step authorization-code login and the logout
// round trip. Presenter flows are serialized: while one login or logout view
// is open, another fails with [ErrFlowInProgress].
type Coordinator struct {
	config Config
	logger *slog.Logger

	configProvider ConfigProvider
	exchanger      TokenExchanger
	sessions       SessionLifecycle
	bearer         BearerTokenSource
	profiles       ProfileFetcher
	loginTime      LoginTimeTransport

	tabs       useragent.CustomTabs
	loginView  useragent.Presenter
	logoutView useragent.Presenter
	decode     jwt.Decoder

	resolver    *endpointResolver
	stopResolve context.CancelFunc

	audit   *internalaudit.Dispatcher
	metrics *Metrics

	flowMu sync.Mutex
	closed atomic.Bool
}

// Close describes the close operation and its observable behavior.
//
// Close stops pending endpoint resolution and drains the audit dispatcher.
// Every later call on the Coordinator returns [ErrCoordinatorNotReady].
func (c *Coordinator) Close() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	if c.stopResolve != nil {
		c.stopResolve()
	}
	c.audit.Close()
}

// AuditDropped returns how many audit events were discarded because the
// buffer was full.
func (c *Coordinator) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (c *Coordinator) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Coordinator) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Coordinator) ready() error {
	if c == nil || c.closed.Load() {
		return ErrCoordinatorNotReady
	}
	return nil
}

// Endpoints waits for endpoint resolution and returns the composed URLs.
func (c *Coordinator) Endpoints(ctx context.Context) (EndpointConfig, error) {
	if err := c.ready(); err != nil {
		return EndpointConfig{}, err
	}
	ctx, _ = ensureFlowID(ctx)
	return c.waitEndpoints(ctx)
}

func (c *Coordinator) waitEndpoints(ctx context.Context) (EndpointConfig, error) {
	eps, err := c.resolver.wait(ctx, c.config.ConfigTimeout)
	if err != nil {
		c.metricInc(MetricConfigUnresolved)
		c.flowLogger(ctx).WarnContext(ctx, "oauth: endpoint configuration unresolved", "error", err)
		c.emitAudit(ctx, auditEventConfigUnresolved, false, "", "", err, nil)
		return EndpointConfig{}, err
	}
	return eps, nil
}

func (c *Coordinator) lockFlow() error {
	if !c.flowMu.TryLock() {
		c.metricInc(MetricFlowInProgress)
		return ErrFlowInProgress
	}
	return nil
}

// RequestAuthorizationCode describes the requestauthorizationcode operation and its observable behavior.
//
// RequestAuthorizationCode presents the authorization URL through custom tabs
// when available and the web view otherwise, then extracts the code from the
// redirect. Closing the view first yields [ErrUserCanceled]; a redirect
// without a code yields [ErrRedirectParse]. A custom tabs launch error is
// returned unchanged.
func (c *Coordinator) RequestAuthorizationCode(ctx context.Context, opts AuthorizeOptions) (AuthorizationResult, error) {
	if err := c.ready(); err != nil {
		return AuthorizationResult{}, err
	}
	ctx, _ = ensureFlowID(ctx)

	if err := c.lockFlow(); err != nil {
		return AuthorizationResult{}, err
	}
	defer c.flowMu.Unlock()

	eps, err := c.waitEndpoints(ctx)
	if err != nil {
		return AuthorizationResult{}, err
	}

	res, err := flows.RunAuthorize(ctx, flows.AuthorizeRequest{
		URL:            eps.AuthorizationURL,
		RedirectPrefix: eps.RedirectURI,
		RTL:            opts.RTL,
	}, c.authorizeDeps(ctx))
	if err != nil {
		return AuthorizationResult{}, err
	}

	return AuthorizationResult{
		Code:        res.Code,
		CallbackURL: res.CallbackURL,
		Strategy:    res.Strategy,
	}, nil
}

// ExchangeCodeForSession describes the exchangecodeforsession operation and its observable behavior.
//
// ExchangeCodeForSession trades code for tokens, starts the local session and
// then runs the profile fetch and login-time update. It succeeds exactly when
// the session was started; the best-effort outcomes are reported in the
// result. Failures before the session start have no session side effects.
func (c *Coordinator) ExchangeCodeForSession(ctx context.Context, code string) (LoginResult, error) {
	if err := c.ready(); err != nil {
		return LoginResult{}, err
	}
	if code == "" {
		return LoginResult{}, ErrRedirectParse
	}
	ctx, _ = ensureFlowID(ctx)

	eps, err := c.waitEndpoints(ctx)
	if err != nil {
		return LoginResult{}, err
	}

	res, err := flows.RunBootstrap(ctx, code, c.bootstrapDeps(ctx, eps))
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Tokens: TokenBundle{
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
			UserID:       res.UserID,
		},
		ProfileFetch: BestEffort(res.ProfileFetch),
		LoginTime:    BestEffort(res.LoginTime),
	}, nil
}

// Login runs [Coordinator.RequestAuthorizationCode] followed by
// [Coordinator.ExchangeCodeForSession].
func (c *Coordinator) Login(ctx context.Context, opts AuthorizeOptions) (LoginResult, error) {
	ctx, _ = ensureFlowID(ctx)

	auth, err := c.RequestAuthorizationCode(ctx, opts)
	if err != nil {
		return LoginResult{}, err
	}

	result, err := c.ExchangeCodeForSession(ctx, auth.Code)
	if err != nil {
		return LoginResult{}, err
	}
	result.Strategy = auth.Strategy
	return result, nil
}

// RecordLoginTime reports a login moment for userID to the user service.
// Bearer token failures wrap [ErrBearerToken]; HTTP failures and non-2xx
// responses wrap [ErrTransport].
func (c *Coordinator) RecordLoginTime(ctx context.Context, accessToken, userID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	ctx, _ = ensureFlowID(ctx)

	eps, err := c.waitEndpoints(ctx)
	if err != nil {
		return err
	}

	if err := c.runLoginTime(ctx, eps, accessToken, userID); err != nil {
		c.metricInc(MetricLoginTimeFailure)
		c.emitAudit(ctx, auditEventLoginTimeFailure, false, userID, "", err, nil)
		return err
	}
	c.metricInc(MetricLoginTimeSuccess)
	return nil
}

func (c *Coordinator) runLoginTime(ctx context.Context, eps EndpointConfig, accessToken, userID string) error {
	return flows.RunRecordLoginTime(ctx, accessToken, userID, flows.LoginTimeDeps{
		Endpoint:    eps.BaseURL + c.config.LoginTime.Path,
		BearerToken: c.bearerToken(),
		Update:      c.updateLoginTime(),
		Errors: flows.LoginTimeErrors{
			BearerToken: ErrBearerToken,
			Transport:   ErrTransport,
		},
	})
}

// LogOut describes the logout operation and its observable behavior.
//
// LogOut presents the logout URL and ends the local session once the server
// round trip completes. Closing the web view first is governed by
// Config.Logout.CancelPolicy.
func (c *Coordinator) LogOut(ctx context.Context) error {
	if err := c.ready(); err != nil {
		return err
	}
	ctx, _ = ensureFlowID(ctx)

	if err := c.lockFlow(); err != nil {
		return err
	}
	defer c.flowMu.Unlock()

	eps, err := c.waitEndpoints(ctx)
	if err != nil {
		return err
	}

	_, err = flows.RunLogout(ctx, useragent.Request{
		URL:            eps.LogoutURL,
		RedirectPrefix: eps.RedirectURI,
	}, c.logoutDeps(ctx))
	return err
}

/*
====================================
FLOW DEPENDENCIES
====================================
*/

func (c *Coordinator) flowLogger(ctx context.Context) *slog.Logger {
	return c.logger.With("flow_id", flowIDFromContext(ctx))
}

func (c *Coordinator) flowMetricInc(id int) {
	c.metricInc(MetricID(id))
}

func (c *Coordinator) warnFunc(ctx context.Context) func(string, ...any) {
	logger := c.flowLogger(ctx)
	return func(msg string, args ...any) {
		logger.WarnContext(ctx, msg, args...)
	}
}

func (c *Coordinator) selectPresenter(fallback useragent.Presenter) func(context.Context) (useragent.Presenter, error) {
	return func(ctx context.Context) (useragent.Presenter, error) {
		return useragent.Select(ctx, c.tabs, fallback)
	}
}

func (c *Coordinator) authorizeDeps(ctx context.Context) flows.AuthorizeDeps {
	return flows.AuthorizeDeps{
		SelectPresenter: c.selectPresenter(c.loginView),
		Warn:            c.warnFunc(ctx),
		MetricInc:       c.flowMetricInc,
		EmitAudit:       c.emitAudit,
		Metrics: flows.AuthorizeMetrics{
			Success:         int(MetricAuthorizeSuccess),
			Failure:         int(MetricAuthorizeFailure),
			Canceled:        int(MetricAuthorizeCanceled),
			RedirectInvalid: int(MetricRedirectParseFailure),
		},
		Events: flows.AuthorizeEvents{
			Success:  auditEventAuthorizeSuccess,
			Failure:  auditEventAuthorizeFailure,
			Canceled: auditEventAuthorizeCanceled,
		},
		Errors: flows.AuthorizeErrors{
			UserCanceled:         ErrUserCanceled,
			RedirectParse:        ErrRedirectParse,
			UserAgentUnavailable: ErrUserAgentUnavailable,
		},
	}
}

func (c *Coordinator) bootstrapDeps(ctx context.Context, eps EndpointConfig) flows.BootstrapDeps {
	logger := c.flowLogger(ctx)
	deps := flows.BootstrapDeps{
		CreateSession:    c.exchanger.CreateSession,
		Decode:           c.decode,
		StartSession:     c.sessions.StartSession,
		ProfileTimeout:   c.config.Profile.Timeout,
		LoginTimeTimeout: c.config.LoginTime.Timeout,
		Now:              time.Now,
		ObserveExchange: func(d time.Duration) {
			c.metrics.Observe(MetricTokenExchangeLatency, d)
		},
		Warn: c.warnFunc(ctx),
		Debug: func(msg string, args ...any) {
			logger.DebugContext(ctx, msg, args...)
		},
		MetricInc: c.flowMetricInc,
		EmitAudit: c.emitAudit,
		Metrics: flows.BootstrapMetrics{
			TokenExchangeFailure: int(MetricTokenExchangeFailure),
			PayloadDecodeFailure: int(MetricPayloadDecodeFailure),
			SessionStartFailure:  int(MetricSessionStartFailure),
			SessionStarted:       int(MetricSessionStarted),
			ProfileFetchFailure:  int(MetricProfileFetchFailure),
			LoginTimeSuccess:     int(MetricLoginTimeSuccess),
			LoginTimeFailure:     int(MetricLoginTimeFailure),
		},
		Events: flows.BootstrapEvents{
			TokenExchangeFailure: auditEventTokenExchangeFailure,
			SessionStarted:       auditEventSessionStarted,
			ProfileFetchFailure:  auditEventProfileFetchFailure,
			LoginTimeFailure:     auditEventLoginTimeFailure,
		},
		Errors: flows.BootstrapErrors{
			TokenExchange: ErrTokenExchange,
			PayloadDecode: ErrPayloadDecode,
			SessionStart:  ErrSessionStart,
		},
	}

	if c.profiles != nil {
		fields := append([]string(nil), c.config.Profile.RequiredFields...)
		deps.FetchProfile = func(ctx context.Context, userID string) error {
			return c.profiles.GetUserProfileDetails(ctx, ProfileFetchRequest{
				UserID:         userID,
				RequiredFields: fields,
			})
		}
	}
	if c.config.LoginTime.Enabled {
		deps.RecordLoginTime = func(ctx context.Context, accessToken, userID string) error {
			return c.runLoginTime(ctx, eps, accessToken, userID)
		}
	}

	return deps
}

func (c *Coordinator) bearerToken() func(context.Context) (string, error) {
	if c.bearer == nil {
		return nil
	}
	return c.bearer.BearerToken
}

func (c *Coordinator) updateLoginTime() func(ctx context.Context, endpoint, accessToken, bearerToken, userID string) error {
	if c.loginTime == nil {
		return nil
	}
	return func(ctx context.Context, endpoint, accessToken, bearerToken, userID string) error {
		return c.loginTime.UpdateLoginTime(ctx, endpoint, LoginTimeRequest{
			AccessToken: accessToken,
			BearerToken: bearerToken,
			UserID:      userID,
		})
	}
}

func (c *Coordinator) logoutDeps(ctx context.Context) flows.LogoutDeps {
	return flows.LogoutDeps{
		SelectPresenter:    c.selectPresenter(c.logoutView),
		EndSession:         c.sessions.EndSession,
		EndSessionOnCancel: c.config.Logout.CancelPolicy == LogoutCancelEndSession,
		Warn:               c.warnFunc(ctx),
		MetricInc:          c.flowMetricInc,
		EmitAudit:          c.emitAudit,
		Metrics: flows.LogoutMetrics{
			Success:  int(MetricLogoutSuccess),
			Failure:  int(MetricLogoutFailure),
			Canceled: int(MetricLogoutCanceled),
		},
		Events: flows.LogoutEvents{
			Success:  auditEventLogoutSuccess,
			Failure:  auditEventLogoutFailure,
			Canceled: auditEventLogoutCanceled,
		},
		Errors: flows.LogoutErrors{
			LogoutFailed:         ErrLogoutFailed,
			LogoutCanceled:       ErrLogoutCanceled,
			UserAgentUnavailable: ErrUserAgentUnavailable,
		},
	}
}
