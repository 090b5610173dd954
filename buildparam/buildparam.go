// Package buildparam supplies build-time configuration values such as the
// identity server base URL and the OAuth redirect URI.
package buildparam

import (
	"context"
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	KeyBaseURL     = "BASE_URL"
	KeyRedirectURL = "OAUTH_REDIRECT_URL"
)

var (
	ErrUnknownKey = errors.New("buildparam: unknown key")
	ErrEmptyValue = errors.New("buildparam: empty value")
)

// Params are the values read from the environment.
type Params struct {
	BaseURL     string `env:"BASE_URL"`
	RedirectURL string `env:"OAUTH_REDIRECT_URL"`
	Platform    string `env:"PLATFORM" envDefault:"android"`
	// BearerToken is the application's API bearer for user-service calls.
	BearerToken string `env:"API_BEARER_TOKEN"`
}

// Values maps Params to the lookup keys understood by ConfigValue.
func (p Params) Values() Static {
	return Static{
		KeyBaseURL:     p.BaseURL,
		KeyRedirectURL: p.RedirectURL,
	}
}

// Provider reads Params from the process environment on every lookup.
type Provider struct {
	opts env.Options
}

// NewProvider returns a Provider reading variables named prefix+name.
func NewProvider(prefix string) *Provider {
	return &Provider{opts: env.Options{Prefix: prefix}}
}

// Params parses the environment.
func (p *Provider) Params() (Params, error) {
	var params Params
	if err := env.ParseWithOptions(&params, p.opts); err != nil {
		return Params{}, fmt.Errorf("parse env: %w", err)
	}
	return params, nil
}

func (p *Provider) ConfigValue(ctx context.Context, key string) (string, error) {
	params, err := p.Params()
	if err != nil {
		return "", err
	}
	return params.Values().ConfigValue(ctx, key)
}

// Static serves fixed values.
type Static map[string]string

func (s Static) ConfigValue(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := s[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if v == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyValue, key)
	}
	return v, nil
}
