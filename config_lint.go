package goAuthClient

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks configuration warnings.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is one configuration smell. Valid configs can still carry warnings.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

type LintResult []LintWarning

func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins warnings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	matched := r.BySeverity(min)
	if len(matched) == 0 {
		return nil
	}
	errs := make([]error, 0, len(matched))
	for _, w := range matched {
		errs = append(errs, fmt.Errorf("%s [%s]: %s", w.Code, w.Severity, w.Message))
	}
	return errors.Join(errs...)
}

// Lint inspects c for settings that are valid but likely wrong.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "authorization flows are not audited")
	}
	if c.ConfigTimeout > time.Minute {
		add("config_timeout_long", LintWarn, "flows may block for over a minute waiting on configuration")
	}
	if c.Profile.Timeout == 0 {
		add("profile_timeout_unbounded", LintWarn, "profile fetch is bounded only by the caller context")
	}
	if c.LoginTime.Enabled && c.LoginTime.Timeout == 0 {
		add("login_time_timeout_unbounded", LintWarn, "login-time update is bounded only by the caller context")
	}
	if !c.LoginTime.Enabled {
		add("login_time_disabled", LintInfo, "logins are not reported to the user service")
	}
	if c.Logout.CancelPolicy == LogoutCancelEndSession {
		add("logout_cancel_ends_session", LintWarn, "closing the logout view ends the local session while the server session may survive")
	}
	if !strings.Contains(" "+c.Endpoint.Scope+" ", " offline_access ") {
		add("scope_without_offline_access", LintInfo, "refresh tokens will not outlive the browser session")
	}
	if c.Browser.LoginTarget == "_system" || c.Browser.LogoutTarget == "_system" {
		add("web_view_target_system", LintHigh, "the system browser target emits no navigation events; redirects are never detected")
	}

	return ws
}
