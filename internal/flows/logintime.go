package flows

import (
	"context"
	"fmt"
)

type LoginTimeErrors struct {
	BearerToken error
	Transport   error
}

// LoginTimeDeps captures login-time update dependencies.
type LoginTimeDeps struct {
	Endpoint    string
	BearerToken func(context.Context) (string, error)
	Update      func(ctx context.Context, endpoint, accessToken, bearerToken, userID string) error

	Errors LoginTimeErrors
}

// RunRecordLoginTime reports the login moment for userID to the backend.
func RunRecordLoginTime(ctx context.Context, accessToken, userID string, deps LoginTimeDeps) error {
	if deps.BearerToken == nil {
		return deps.Errors.BearerToken
	}
	bearer, err := deps.BearerToken(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", deps.Errors.BearerToken, err)
	}
	if deps.Update == nil {
		return deps.Errors.Transport
	}
	if err := deps.Update(ctx, deps.Endpoint, accessToken, bearer, userID); err != nil {
		return fmt.Errorf("%w: %w", deps.Errors.Transport, err)
	}
	return nil
}
