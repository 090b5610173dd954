package flows

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/goAuthClient/useragent"
)

type LogoutMetrics struct {
	Success  int
	Failure  int
	Canceled int
}

type LogoutEvents struct {
	Success  string
	Failure  string
	Canceled string
}

type LogoutErrors struct {
	LogoutFailed         error
	LogoutCanceled       error
	UserAgentUnavailable error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	SelectPresenter func(context.Context) (useragent.Presenter, error)
	EndSession      func(context.Context) error
	// EndSessionOnCancel ends the local session when the user closes the
	// view before the logout redirect.
	EndSessionOnCancel bool

	Warn      func(string, ...any)
	MetricInc func(int)
	EmitAudit AuditFunc

	Metrics LogoutMetrics
	Events  LogoutEvents
	Errors  LogoutErrors
}

// RunLogout presents the logout URL and ends the local session once the
// server round trip completes. EndSession runs at most once per call.
func RunLogout(ctx context.Context, req useragent.Request, deps LogoutDeps) (useragent.Strategy, error) {
	normalizeLogoutDeps(&deps)

	presenter, err := deps.SelectPresenter(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", "", err, nil)
		return "", fmt.Errorf("%w: %w", deps.Errors.UserAgentUnavailable, err)
	}
	strategy := presenter.Strategy()

	if _, err := presenter.Present(ctx, req); err != nil {
		switch {
		case errors.Is(err, useragent.ErrClosedByUser):
			if deps.EndSessionOnCancel {
				return strategy, endLocalSession(ctx, strategy, deps, "canceled")
			}
			deps.MetricInc(deps.Metrics.Canceled)
			deps.EmitAudit(ctx, deps.Events.Canceled, false, "", string(strategy), deps.Errors.LogoutCanceled, nil)
			return strategy, deps.Errors.LogoutCanceled
		case ctx.Err() != nil:
			return strategy, ctx.Err()
		default:
			deps.MetricInc(deps.Metrics.Failure)
			deps.Warn("oauth: logout round trip failed", "strategy", strategy, "error", err)
			deps.EmitAudit(ctx, deps.Events.Failure, false, "", string(strategy), err, nil)
			return strategy, deps.Errors.LogoutFailed
		}
	}

	return strategy, endLocalSession(ctx, strategy, deps, "redirect")
}

func endLocalSession(ctx context.Context, strategy useragent.Strategy, deps LogoutDeps, reason string) error {
	meta := func() map[string]string { return map[string]string{"reason": reason} }
	if err := deps.EndSession(ctx); err != nil {
		deps.MetricInc(deps.Metrics.Failure)
		deps.EmitAudit(ctx, deps.Events.Failure, false, "", string(strategy), err, meta)
		return fmt.Errorf("%w: %w", deps.Errors.LogoutFailed, err)
	}
	deps.MetricInc(deps.Metrics.Success)
	deps.EmitAudit(ctx, deps.Events.Success, true, "", string(strategy), nil, meta)
	return nil
}

func normalizeLogoutDeps(deps *LogoutDeps) {
	if deps.SelectPresenter == nil {
		deps.SelectPresenter = func(context.Context) (useragent.Presenter, error) {
			return nil, useragent.ErrUnavailable
		}
	}
	if deps.EndSession == nil {
		deps.EndSession = func(context.Context) error { return nil }
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
