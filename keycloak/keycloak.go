// Package keycloak exchanges authorization codes at a Keycloak realm's token
// endpoint for public (secretless) mobile and desktop clients.
package keycloak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ErrMissingField is returned by New when a required value is empty.
var ErrMissingField = errors.New("keycloak: missing required field")

// RealmPath returns the OpenID Connect path prefix for realm under baseURL.
func RealmPath(baseURL, realm string) string {
	return strings.TrimRight(baseURL, "/") + "/auth/realms/" + realm + "/protocol/openid-connect"
}

// Exchanger turns authorization codes into token payloads.
type Exchanger struct {
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	now         func() time.Time
}

type Option func(*Exchanger)

func WithHTTPClient(hc *http.Client) Option {
	return func(e *Exchanger) { e.httpClient = hc }
}

func WithScopes(scopes ...string) Option {
	return func(e *Exchanger) { e.oauthConfig.Scopes = scopes }
}

// New builds an exchanger for clientID against realm on baseURL. redirectURI
// must match the one used for the authorization request.
func New(baseURL, realm, clientID, redirectURI string, opts ...Option) (*Exchanger, error) {
	if baseURL == "" || realm == "" || clientID == "" || redirectURI == "" {
		return nil, ErrMissingField
	}
	prefix := RealmPath(baseURL, realm)
	e := &Exchanger{
		oauthConfig: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   prefix + "/auth",
				TokenURL:  prefix + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{"offline_access"},
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	SessionState string `json:"session_state,omitempty"`
}

// CreateSession exchanges code and returns the token response as JSON with
// access_token and refresh_token fields.
func (e *Exchanger) CreateSession(ctx context.Context, code string) ([]byte, error) {
	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}
	token, err := e.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("keycloak: token exchange: %w", err)
	}

	payload := tokenPayload{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		payload.ExpiresIn = int64(token.Expiry.Sub(e.now()).Round(time.Second) / time.Second)
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		payload.IDToken = idToken
	}
	if state, ok := token.Extra("session_state").(string); ok {
		payload.SessionState = state
	}
	return json.Marshal(payload)
}
