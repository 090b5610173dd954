package goAuthClient

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBuildEndpointsAuthorizationURL(t *testing.T) {
	eps, err := BuildEndpoints(testBaseURL, testRedirectURI, DefaultConfig())
	if err != nil {
		t.Fatalf("BuildEndpoints failed: %v", err)
	}

	auth := eps.AuthorizationURL
	if !strings.HasPrefix(auth, "https://idp/auth/realms/sunbird/protocol/openid-connect/auth?") {
		t.Fatalf("unexpected authorization url prefix: %s", auth)
	}
	for _, want := range []string{"client_id=android", "scope=offline_access", "response_type=code", "version=1"} {
		if !strings.Contains(auth, want) {
			t.Fatalf("authorization url %s lacks %s", auth, want)
		}
	}
	if !strings.HasSuffix(auth, url.QueryEscape(testRedirectURI)) {
		t.Fatalf("authorization url must end with the encoded redirect uri: %s", auth)
	}

	wantLogout := "https://idp/auth/realms/sunbird/protocol/openid-connect/logout?redirect_uri=" + url.QueryEscape(testRedirectURI)
	if eps.LogoutURL != wantLogout {
		t.Fatalf("unexpected logout url %s", eps.LogoutURL)
	}
	if eps.RedirectURI != testRedirectURI || eps.BaseURL != testBaseURL {
		t.Fatalf("unexpected resolved values %+v", eps)
	}
}

func TestBuildEndpointsPlatformAndOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Platform = PlatformIOS
	cfg.Endpoint.Version = ""

	eps, err := BuildEndpoints(testBaseURL+"/", testRedirectURI, cfg)
	if err != nil {
		t.Fatalf("BuildEndpoints failed: %v", err)
	}
	if !strings.Contains(eps.AuthorizationURL, "client_id=ios") {
		t.Fatalf("expected ios client id: %s", eps.AuthorizationURL)
	}
	if strings.Contains(eps.AuthorizationURL, "version=") {
		t.Fatalf("empty version must be omitted: %s", eps.AuthorizationURL)
	}
	if strings.Contains(eps.AuthorizationURL, "idp//auth") {
		t.Fatalf("trailing slash must be trimmed: %s", eps.AuthorizationURL)
	}

	cfg.ClientIDs = map[Platform]string{PlatformIOS: "ios-app"}
	eps, err = BuildEndpoints(testBaseURL, testRedirectURI, cfg)
	if err != nil {
		t.Fatalf("BuildEndpoints failed: %v", err)
	}
	if !strings.Contains(eps.AuthorizationURL, "client_id=ios-app") {
		t.Fatalf("expected overridden client id: %s", eps.AuthorizationURL)
	}
}

func TestBuildEndpointsRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		redirect string
	}{
		{name: "empty base", base: "", redirect: testRedirectURI},
		{name: "relative base", base: "idp.example", redirect: testRedirectURI},
		{name: "empty redirect", base: testBaseURL, redirect: "  "},
		{name: "unparseable redirect", base: testBaseURL, redirect: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildEndpoints(tt.base, tt.redirect, DefaultConfig()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

type countingProvider struct {
	values map[string]string
	calls  chan string
}

func (p *countingProvider) ConfigValue(_ context.Context, key string) (string, error) {
	p.calls <- key
	return p.values[key], nil
}

func TestEndpointResolverResolvesOnce(t *testing.T) {
	p := &countingProvider{
		values: map[string]string{"BASE_URL": testBaseURL, "OAUTH_REDIRECT_URL": testRedirectURI},
		calls:  make(chan string, 4),
	}
	r := startEndpointResolver(context.Background(), p, DefaultConfig())

	for i := 0; i < 3; i++ {
		eps, err := r.wait(context.Background(), time.Second)
		if err != nil {
			t.Fatalf("wait failed: %v", err)
		}
		if eps.RedirectURI != testRedirectURI {
			t.Fatalf("unexpected endpoints %+v", eps)
		}
	}
	if got := len(p.calls); got != 2 {
		t.Fatalf("expected two lookups, got %d", got)
	}
}

func TestEndpointResolverEmptyValue(t *testing.T) {
	p := &countingProvider{
		values: map[string]string{"BASE_URL": testBaseURL, "OAUTH_REDIRECT_URL": ""},
		calls:  make(chan string, 4),
	}
	r := startEndpointResolver(context.Background(), p, DefaultConfig())

	_, err := r.wait(context.Background(), time.Second)
	if !errors.Is(err, ErrConfigurationUnresolved) || !errors.Is(err, errEmptyConfigValue) {
		t.Fatalf("expected unresolved empty value, got %v", err)
	}
}

func TestEndpointResolverHonoursCallerContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := startEndpointResolver(ctx, blockingProvider{}, DefaultConfig())

	waitCtx, waitCancel := context.WithCancel(context.Background())
	waitCancel()

	_, err := r.wait(waitCtx, time.Minute)
	if !errors.Is(err, ErrConfigurationUnresolved) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected unresolved cancellation, got %v", err)
	}
}
