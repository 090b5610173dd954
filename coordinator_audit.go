package goAuthClient

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventAuthorizeSuccess     = "oauth_authorize_success"
	auditEventAuthorizeFailure     = "oauth_authorize_failure"
	auditEventAuthorizeCanceled    = "oauth_authorize_canceled"
	auditEventTokenExchangeFailure = "oauth_token_exchange_failure"
	auditEventSessionStarted       = "oauth_session_started"
	auditEventProfileFetchFailure  = "oauth_profile_fetch_failure"
	auditEventLoginTimeFailure     = "oauth_login_time_failure"
	auditEventLogoutSuccess        = "oauth_logout_success"
	auditEventLogoutFailure        = "oauth_logout_failure"
	auditEventLogoutCanceled       = "oauth_logout_canceled"
	auditEventConfigUnresolved     = "oauth_config_unresolved"
)

func (c *Coordinator) emitAudit(ctx context.Context, eventType string, success bool, userID, strategy string, err error, metadataBuilder func() map[string]string) {
	if c == nil || c.audit == nil || eventType == "" {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	c.audit.Emit(ctx, AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		FlowID:    flowIDFromContext(ctx),
		UserID:    userID,
		Strategy:  strategy,
		Success:   success,
		Error:     auditErrorCode(err),
		Metadata:  metadata,
	})
}

func auditErrorCode(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrConfigurationUnresolved):
		return "config_unresolved"
	case errors.Is(err, ErrUserCanceled):
		return "user_canceled"
	case errors.Is(err, ErrRedirectParse):
		return "redirect_parse"
	case errors.Is(err, ErrTokenExchange):
		return "token_exchange"
	case errors.Is(err, ErrPayloadDecode):
		return "payload_decode"
	case errors.Is(err, ErrSessionStart):
		return "session_start"
	case errors.Is(err, ErrBearerToken):
		return "bearer_token"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrLogoutCanceled):
		return "logout_canceled"
	case errors.Is(err, ErrLogoutFailed):
		return "logout_failed"
	case errors.Is(err, ErrUserAgentUnavailable):
		return "user_agent_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "internal_error"
	}
}
