package buildparam

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestProviderReadsPrefixedEnvironment(t *testing.T) {
	t.Setenv("APP_BASE_URL", "https://idp")
	t.Setenv("APP_OAUTH_REDIRECT_URL", "https://app/cb")

	p := NewProvider("APP_")
	base, err := p.ConfigValue(context.Background(), KeyBaseURL)
	if err != nil {
		t.Fatalf("BASE_URL lookup failed: %v", err)
	}
	if base != "https://idp" {
		t.Fatalf("unexpected base url %q", base)
	}
	redirect, err := p.ConfigValue(context.Background(), KeyRedirectURL)
	if err != nil {
		t.Fatalf("OAUTH_REDIRECT_URL lookup failed: %v", err)
	}
	if redirect != "https://app/cb" {
		t.Fatalf("unexpected redirect %q", redirect)
	}

	params, err := p.Params()
	if err != nil {
		t.Fatalf("Params failed: %v", err)
	}
	if params.Platform != "android" {
		t.Fatalf("expected default platform android, got %q", params.Platform)
	}
}

func TestProviderMissingValue(t *testing.T) {
	t.Setenv("MISSING_TEST_BASE_URL", "")
	_, err := NewProvider("MISSING_TEST_").ConfigValue(context.Background(), KeyBaseURL)
	if !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("expected ErrEmptyValue, got %v", err)
	}
}

func TestStaticLookup(t *testing.T) {
	s := Static{KeyBaseURL: "https://idp"}
	if _, err := s.ConfigValue(context.Background(), "OTHER"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ConfigValue(ctx, KeyBaseURL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := s.ConfigValue(context.Background(), KeyRedirectURL); err == nil || !strings.Contains(err.Error(), KeyRedirectURL) {
		t.Fatalf("expected error naming key, got %v", err)
	}
}
