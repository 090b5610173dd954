package flows

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrEthical07/goAuthClient/jwt"
)

type BootstrapMetrics struct {
	TokenExchangeFailure int
	PayloadDecodeFailure int
	SessionStartFailure  int
	SessionStarted       int
	ProfileFetchFailure  int
	LoginTimeSuccess     int
	LoginTimeFailure     int
}

type BootstrapEvents struct {
	TokenExchangeFailure string
	SessionStarted       string
	ProfileFetchFailure  string
	LoginTimeFailure     string
}

type BootstrapErrors struct {
	TokenExchange error
	PayloadDecode error
	SessionStart  error
}

// BootstrapDeps captures code-for-session flow dependencies. FetchProfile and
// RecordLoginTime are optional; a nil func skips that sub-task.
type BootstrapDeps struct {
	CreateSession   func(ctx context.Context, code string) ([]byte, error)
	Decode          jwt.Decoder
	StartSession    func(ctx context.Context, accessToken, refreshToken, userID string) error
	FetchProfile    func(ctx context.Context, userID string) error
	RecordLoginTime func(ctx context.Context, accessToken, userID string) error

	ProfileTimeout   time.Duration
	LoginTimeTimeout time.Duration

	Now             func() time.Time
	ObserveExchange func(time.Duration)
	Warn            func(string, ...any)
	Debug           func(string, ...any)
	MetricInc       func(int)
	EmitAudit       AuditFunc

	Metrics BootstrapMetrics
	Events  BootstrapEvents
	Errors  BootstrapErrors
}

// SubTaskOutcome reports a best-effort step. Err is nil when the step was
// skipped or succeeded.
type SubTaskOutcome struct {
	Attempted bool
	Err       error
}

type BootstrapResult struct {
	AccessToken  string
	RefreshToken string
	UserID       string
	ProfileFetch SubTaskOutcome
	LoginTime    SubTaskOutcome
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RunBootstrap exchanges code for tokens, starts the session and runs the
// best-effort sub-tasks. Once StartSession succeeds the call succeeds.
func RunBootstrap(ctx context.Context, code string, deps BootstrapDeps) (BootstrapResult, error) {
	normalizeBootstrapDeps(&deps)

	start := deps.Now()
	raw, err := deps.CreateSession(ctx, code)
	deps.ObserveExchange(deps.Now().Sub(start))
	if err != nil {
		deps.MetricInc(deps.Metrics.TokenExchangeFailure)
		deps.EmitAudit(ctx, deps.Events.TokenExchangeFailure, false, "", "", err, nil)
		return BootstrapResult{}, fmt.Errorf("%w: %w", deps.Errors.TokenExchange, err)
	}

	var payload tokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return BootstrapResult{}, decodeFailure(ctx, deps, fmt.Errorf("%w: %w", deps.Errors.PayloadDecode, err))
	}
	if payload.AccessToken == "" {
		return BootstrapResult{}, decodeFailure(ctx, deps, fmt.Errorf("%w: access_token missing", deps.Errors.PayloadDecode))
	}

	userID, err := jwt.UnverifiedSubject(payload.AccessToken, deps.Decode)
	if err != nil {
		deps.Debug("oauth: access token payload rejected", "error", err)
		return BootstrapResult{}, decodeFailure(ctx, deps, deps.Errors.PayloadDecode)
	}

	if err := deps.StartSession(ctx, payload.AccessToken, payload.RefreshToken, userID); err != nil {
		deps.MetricInc(deps.Metrics.SessionStartFailure)
		deps.EmitAudit(ctx, deps.Events.TokenExchangeFailure, false, userID, "", err, func() map[string]string {
			return map[string]string{"stage": "start_session"}
		})
		return BootstrapResult{}, fmt.Errorf("%w: %w", deps.Errors.SessionStart, err)
	}
	deps.MetricInc(deps.Metrics.SessionStarted)
	deps.EmitAudit(ctx, deps.Events.SessionStarted, true, userID, "", nil, nil)

	result := BootstrapResult{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		UserID:       userID,
	}

	if deps.FetchProfile != nil {
		result.ProfileFetch.Attempted = true
		err := runBounded(ctx, deps.ProfileTimeout, func(ctx context.Context) error {
			return deps.FetchProfile(ctx, userID)
		})
		if err != nil {
			result.ProfileFetch.Err = err
			deps.MetricInc(deps.Metrics.ProfileFetchFailure)
			deps.Warn("oauth: profile fetch failed", "user_id", userID, "error", err)
			deps.EmitAudit(ctx, deps.Events.ProfileFetchFailure, false, userID, "", err, nil)
		}
	}

	if deps.RecordLoginTime != nil {
		result.LoginTime.Attempted = true
		err := runBounded(ctx, deps.LoginTimeTimeout, func(ctx context.Context) error {
			return deps.RecordLoginTime(ctx, payload.AccessToken, userID)
		})
		if err != nil {
			result.LoginTime.Err = err
			deps.MetricInc(deps.Metrics.LoginTimeFailure)
			deps.Warn("oauth: login time update failed", "user_id", userID, "error", err)
			deps.EmitAudit(ctx, deps.Events.LoginTimeFailure, false, userID, "", err, nil)
		} else {
			deps.MetricInc(deps.Metrics.LoginTimeSuccess)
		}
	}

	return result, nil
}

func decodeFailure(ctx context.Context, deps BootstrapDeps, err error) error {
	deps.MetricInc(deps.Metrics.PayloadDecodeFailure)
	deps.EmitAudit(ctx, deps.Events.TokenExchangeFailure, false, "", "", err, func() map[string]string {
		return map[string]string{"stage": "decode_payload"}
	})
	return err
}

func runBounded(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return fn(ctx)
}

func normalizeBootstrapDeps(deps *BootstrapDeps) {
	if deps.Decode == nil {
		deps.Decode = jwt.SegmentDecoder
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.ObserveExchange == nil {
		deps.ObserveExchange = func(time.Duration) {}
	}
	if deps.Warn == nil {
		deps.Warn = noopLog
	}
	if deps.Debug == nil {
		deps.Debug = noopLog
	}
	if deps.MetricInc == nil {
		deps.MetricInc = noopMetricInc
	}
	if deps.EmitAudit == nil {
		deps.EmitAudit = noopAudit
	}
}
