package goAuthClient

import "errors"

var (
	// ErrConfigurationUnresolved is returned when BASE_URL or OAUTH_REDIRECT_URL
	// could not be resolved before the configuration timeout.
	ErrConfigurationUnresolved = errors.New("oauth configuration unresolved")
	// ErrUserCanceled is returned when the user closes the login view before the redirect.
	ErrUserCanceled = errors.New("user canceled authorization")
	// ErrRedirectParse is returned when the redirect URL carries no authorization code.
	ErrRedirectParse = errors.New("redirect url has no authorization code")
	// ErrTokenExchange wraps failures of the code-for-token exchange.
	ErrTokenExchange = errors.New("token exchange failed")
	// ErrPayloadDecode is returned when the token payload or access token cannot be decoded.
	ErrPayloadDecode = errors.New("token payload decode failed")
	// ErrSessionStart wraps failures to start the local session.
	ErrSessionStart = errors.New("session start failed")
	// ErrBearerToken wraps failures to obtain the application bearer token.
	ErrBearerToken = errors.New("bearer token unavailable")
	// ErrTransport wraps HTTP failures and non-2xx responses from the user service.
	ErrTransport = errors.New("transport error")
	// ErrLogoutFailed is returned when the logout round trip or local session teardown fails.
	ErrLogoutFailed = errors.New("logout failed")
	// ErrLogoutCanceled is returned when the user closes the logout view before the redirect.
	ErrLogoutCanceled = errors.New("logout canceled")
	// ErrFlowInProgress is returned when a login or logout view is already being presented.
	ErrFlowInProgress = errors.New("authorization flow already in progress")
	// ErrCoordinatorNotReady is returned by methods called on a nil or closed Coordinator,
	// or when a required collaborator was not configured.
	ErrCoordinatorNotReady = errors.New("coordinator not ready")
	// ErrUserAgentUnavailable is returned when neither custom tabs nor a web view can present.
	ErrUserAgentUnavailable = errors.New("no user agent available")
)
