package goAuthClient

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/buildparam"
	"github.com/MrEthical07/goAuthClient/useragent"
	"github.com/MrEthical07/goAuthClient/useragent/useragenttest"
)

const (
	testBaseURL     = "https://idp"
	testRedirectURI = "https://app/cb"
)

func testProvider() buildparam.Static {
	return buildparam.Static{
		buildparam.KeyBaseURL:     testBaseURL,
		buildparam.KeyRedirectURL: testRedirectURI,
	}
}

type blockingProvider struct{}

func (blockingProvider) ConfigValue(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func testAccessToken(sub string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"` + sub + `"}`))
	return "eyJhbGciOiJub25lIn0." + payload + ".sig"
}

type stubExchanger struct {
	mu      sync.Mutex
	payload []byte
	err     error
	codes   []string
}

func tokenExchangerFor(sub string) *stubExchanger {
	return &stubExchanger{
		payload: []byte(`{"access_token":"` + testAccessToken(sub) + `","refresh_token":"refresh-1"}`),
	}
}

func (s *stubExchanger) CreateSession(_ context.Context, code string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return s.payload, s.err
}

type stubSessions struct {
	mu       sync.Mutex
	startErr error
	endErr   error
	starts   int
	ends     int
	userID   string
	refresh  string
}

func (s *stubSessions) StartSession(_ context.Context, _, refreshToken, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts++
	if s.startErr != nil {
		return s.startErr
	}
	s.userID = userID
	s.refresh = refreshToken
	return nil
}

func (s *stubSessions) EndSession(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ends++
	return s.endErr
}

func (s *stubSessions) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts, s.ends
}

type stubProfiles struct {
	mu    sync.Mutex
	err   error
	block bool
	reqs  []ProfileFetchRequest
}

func (s *stubProfiles) GetUserProfileDetails(ctx context.Context, req ProfileFetchRequest) error {
	s.mu.Lock()
	s.reqs = append(s.reqs, req)
	block, err := s.block, s.err
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

type stubLoginTime struct {
	mu        sync.Mutex
	err       error
	endpoints []string
	reqs      []LoginTimeRequest
}

func (s *stubLoginTime) UpdateLoginTime(_ context.Context, endpoint string, req LoginTimeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoints = append(s.endpoints, endpoint)
	s.reqs = append(s.reqs, req)
	return s.err
}

func (s *stubLoginTime) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}

func staticBearer(token string) BearerTokenFunc {
	return func(context.Context) (string, error) { return token, nil }
}

var errStub = errors.New("stub failure")

type testRig struct {
	tabs      *useragenttest.CustomTabs
	webview   *useragenttest.WebView
	exchanger *stubExchanger
	sessions  *stubSessions
	profiles  *stubProfiles
	loginTime *stubLoginTime
}

func newTestRig() *testRig {
	return &testRig{
		tabs:      &useragenttest.CustomTabs{},
		webview:   &useragenttest.WebView{},
		exchanger: tokenExchangerFor("user-1"),
		sessions:  &stubSessions{},
		profiles:  &stubProfiles{},
		loginTime: &stubLoginTime{},
	}
}

func (r *testRig) builder(cfg Config) *Builder {
	return New().
		WithConfig(cfg).
		WithConfigProvider(testProvider()).
		WithTokenExchanger(r.exchanger).
		WithSessionLifecycle(r.sessions).
		WithBearerTokenSource(staticBearer("app-bearer")).
		WithProfileFetcher(r.profiles).
		WithLoginTimeTransport(r.loginTime).
		WithCustomTabs(r.tabs).
		WithWebView(r.webview).
		WithMetricsEnabled(true)
}

func buildTestCoordinator(t *testing.T, cfg Config, r *testRig) *Coordinator {
	t.Helper()

	c, err := r.builder(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ConfigTimeout = time.Second
	return cfg
}

// webViewOnly makes custom tabs report unavailable so the web view presents.
func (r *testRig) webViewOnly() {
	r.tabs.AvailableErr = errors.New("custom tabs not installed")
}

func navigateOnLoad(url string) func(v *useragenttest.View) {
	return func(v *useragenttest.View) {
		if v.WaitForListener(useragent.EventLoadStart, time.Second) {
			v.Navigate(url)
		}
	}
}

func dismissOnLoad() func(v *useragenttest.View) {
	return func(v *useragenttest.View) {
		if v.WaitForListener(useragent.EventExit, time.Second) {
			v.Dismiss()
		}
	}
}
