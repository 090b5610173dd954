package flows

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/MrEthical07/goAuthClient/useragent"
)

type AuthorizeMetrics struct {
	Success         int
	Failure         int
	Canceled        int
	RedirectInvalid int
}

type AuthorizeEvents struct {
	Success  string
	Failure  string
	Canceled string
}

type AuthorizeErrors struct {
	UserCanceled         error
	RedirectParse        error
	UserAgentUnavailable error
}

// AuthorizeDeps captures authorization-code flow dependencies.
type AuthorizeDeps struct {
	SelectPresenter func(context.Context) (useragent.Presenter, error)

	Warn      func(string, ...any)
	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics AuthorizeMetrics
	Events  AuthorizeEvents
	Errors  AuthorizeErrors
}

type AuthorizeRequest struct {
	URL            string
	RedirectPrefix string
	RTL            bool
}

type AuthorizeResult struct {
	Code        string
	CallbackURL string
	Strategy    useragent.Strategy
}

// RunAuthorize presents the authorization URL through the selected user
// agent and extracts the authorization code from the redirect.
func RunAuthorize(ctx context.Context, req AuthorizeRequest, deps AuthorizeDeps) (AuthorizeResult, error) {
	normalizeAuthorizeDeps(&deps)

	presenter, err := deps.SelectPresenter(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return AuthorizeResult{}, ctxErr
		}
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", "", err, nil)
		return AuthorizeResult{}, fmt.Errorf("%w: %w", deps.Errors.UserAgentUnavailable, err)
	}
	strategy := string(presenter.Strategy())

	outcome, err := presenter.Present(ctx, useragent.Request{
		URL:            req.URL,
		RedirectPrefix: req.RedirectPrefix,
		RTL:            req.RTL,
	})
	if err != nil {
		if errors.Is(err, useragent.ErrClosedByUser) {
			deps.MetricInc(deps.Metrics.Canceled)
			deps.EmitAudit(ctx, deps.Events.Canceled, false, "", strategy, deps.Errors.UserCanceled, nil)
			return AuthorizeResult{}, deps.Errors.UserCanceled
		}
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", strategy, err, nil)
		return AuthorizeResult{}, err
	}

	code, ok := ExtractAuthorizationCode(outcome.URL)
	if !ok {
		deps.MetricInc(deps.Metrics.RedirectInvalid)
		deps.MetricInc(deps.Metrics.Failure)
		deps.Warn("oauth: redirect carried no authorization code", "strategy", strategy)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", strategy, deps.Errors.RedirectParse, nil)
		return AuthorizeResult{}, deps.Errors.RedirectParse
	}

	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, "", strategy, nil, nil)
	return AuthorizeResult{
		Code:        code,
		CallbackURL: outcome.URL,
		Strategy:    outcome.Strategy,
	}, nil
}

// ExtractAuthorizationCode returns the authorization code carried by a
// redirect URL. A "code" query parameter wins; otherwise the value of the
// first query parameter is used, whatever its name. The fragment is ignored.
func ExtractAuthorizationCode(redirect string) (string, bool) {
	_, query, ok := strings.Cut(redirect, "?")
	if !ok {
		return "", false
	}
	query, _, _ = strings.Cut(query, "#")

	if values, err := url.ParseQuery(query); err == nil {
		if code := values.Get("code"); code != "" {
			return code, true
		}
	}

	tokens := strings.Split(query, "=")
	if len(tokens) < 2 {
		return "", false
	}
	code, _, _ := strings.Cut(tokens[1], "&")
	if unescaped, err := url.QueryUnescape(code); err == nil {
		code = unescaped
	}
	if code == "" {
		return "", false
	}
	return code, true
}

func normalizeAuthorizeDeps(deps *AuthorizeDeps) {
	if deps.SelectPresenter == nil {
		deps.SelectPresenter = func(context.Context) (useragent.Presenter, error) {
			return nil, useragent.ErrUnavailable
		}
	}
	if deps.Warn == nil {
		deps.Warn = noopLog
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
}
