// Package backend is the HTTP client for the application's user service.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultLoginTimePath is the user-service route that records a login.
const DefaultLoginTimePath = "/api/user/v1/update/logintime"

// LoginTimeRequest carries the credentials and subject of one login-time update.
type LoginTimeRequest struct {
	AccessToken string
	BearerToken string
	UserID      string
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

type loginTimeBody struct {
	Params  map[string]any `json:"params"`
	Request loginTimeUser  `json:"request"`
}

type loginTimeUser struct {
	UserID string `json:"userId"`
}

// Client talks to the user service. It never retries.
type Client struct {
	http *resty.Client
}

type Option func(*Client)

// WithHTTPClient routes requests through hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

func New(opts ...Option) *Client {
	c := &Client{http: resty.New()}
	for _, opt := range opts {
		opt(c)
	}
	c.http.SetRetryCount(0)
	return c
}

// UpdateLoginTime PATCHes endpoint with {"params":{},"request":{"userId":...}}.
func (c *Client) UpdateLoginTime(ctx context.Context, endpoint string, req LoginTimeRequest) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Authenticated-User-Token", req.AccessToken).
		SetAuthToken(req.BearerToken).
		SetBody(loginTimeBody{
			Params:  map[string]any{},
			Request: loginTimeUser{UserID: req.UserID},
		}).
		Patch(endpoint)
	if err != nil {
		return fmt.Errorf("backend: patch login time: %w", err)
	}
	if !res.IsSuccess() {
		return &StatusError{
			Method:     http.MethodPatch,
			URL:        endpoint,
			StatusCode: res.StatusCode(),
			Body:       res.String(),
		}
	}
	return nil
}
