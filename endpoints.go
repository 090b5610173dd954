package goAuthClient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goAuthClient/keycloak"
	"golang.org/x/sync/errgroup"
)

var (
	errEmptyConfigValue = errors.New("empty configuration value")
	errInvalidURL       = errors.New("configuration value is not an absolute url")
)

// BuildEndpoints derives the authorization and logout URLs for baseURL and
// redirectURI under cfg. redirect_uri is always the last query parameter of
// the authorization URL.
func BuildEndpoints(baseURL, redirectURI string, cfg Config) (EndpointConfig, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	redirectURI = strings.TrimSpace(redirectURI)
	if err := validateAbsoluteURL(baseURL); err != nil {
		return EndpointConfig{}, fmt.Errorf("%s: %w", cfg.Endpoint.BaseURLKey, err)
	}
	if err := validateAbsoluteURL(redirectURI); err != nil {
		return EndpointConfig{}, fmt.Errorf("%s: %w", cfg.Endpoint.RedirectURIKey, err)
	}

	prefix := keycloak.RealmPath(baseURL, cfg.Endpoint.Realm)
	escapedRedirect := url.QueryEscape(redirectURI)

	var auth strings.Builder
	auth.WriteString(prefix)
	auth.WriteString("/auth?response_type=code&scope=")
	auth.WriteString(url.QueryEscape(cfg.Endpoint.Scope))
	auth.WriteString("&client_id=")
	auth.WriteString(url.QueryEscape(cfg.clientID()))
	if cfg.Endpoint.Version != "" {
		auth.WriteString("&version=")
		auth.WriteString(url.QueryEscape(cfg.Endpoint.Version))
	}
	auth.WriteString("&redirect_uri=")
	auth.WriteString(escapedRedirect)

	return EndpointConfig{
		BaseURL:          baseURL,
		RedirectURI:      redirectURI,
		AuthorizationURL: auth.String(),
		LogoutURL:        prefix + "/logout?redirect_uri=" + escapedRedirect,
	}, nil
}

func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return errEmptyConfigValue
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidURL, err)
	}
	if u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return errInvalidURL
	}
	return nil
}

// endpointResolver resolves both configuration values once. Its fields are
// written by the resolving goroutine before ready is closed and only read
// after.
type endpointResolver struct {
	ready     chan struct{}
	endpoints EndpointConfig
	err       error
}

func startEndpointResolver(ctx context.Context, provider ConfigProvider, cfg Config) *endpointResolver {
	r := &endpointResolver{ready: make(chan struct{})}
	go r.resolve(ctx, provider, cfg)
	return r
}

func (r *endpointResolver) resolve(ctx context.Context, provider ConfigProvider, cfg Config) {
	defer close(r.ready)

	var baseURL, redirectURI string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := lookupConfigValue(gctx, provider, cfg.Endpoint.BaseURLKey)
		baseURL = v
		return err
	})
	g.Go(func() error {
		v, err := lookupConfigValue(gctx, provider, cfg.Endpoint.RedirectURIKey)
		redirectURI = v
		return err
	})
	if err := g.Wait(); err != nil {
		r.err = err
		return
	}

	r.endpoints, r.err = BuildEndpoints(baseURL, redirectURI, cfg)
}

func lookupConfigValue(ctx context.Context, provider ConfigProvider, key string) (string, error) {
	v, err := provider.ConfigValue(ctx, key)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", key, err)
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("lookup %s: %w", key, errEmptyConfigValue)
	}
	return v, nil
}

// wait blocks until resolution finished, timeout elapsed or ctx is done.
func (r *endpointResolver) wait(ctx context.Context, timeout time.Duration) (EndpointConfig, error) {
	select {
	case <-r.ready:
		return r.result()
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-r.ready:
		return r.result()
	case <-timer.C:
		return EndpointConfig{}, fmt.Errorf("%w: not resolved within %s", ErrConfigurationUnresolved, timeout)
	case <-ctx.Done():
		return EndpointConfig{}, fmt.Errorf("%w: %w", ErrConfigurationUnresolved, ctx.Err())
	}
}

func (r *endpointResolver) result() (EndpointConfig, error) {
	if r.err != nil {
		return EndpointConfig{}, fmt.Errorf("%w: %w", ErrConfigurationUnresolved, r.err)
	}
	return r.endpoints, nil
}
