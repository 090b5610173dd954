// Package loopback implements [useragent.CustomTabs] for desktop and CLI
// clients: the system browser is launched on the authorization URL and the
// redirect is captured by a short-lived HTTP listener on the loopback
// interface (RFC 8252 §7.3).
package loopback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

var (
	// ErrNoOpener is reported by IsAvailable when no browser launcher is configured.
	ErrNoOpener = errors.New("loopback: no browser opener configured")
	// ErrNotLoopback is returned for redirect URIs that do not point at this host.
	ErrNotLoopback = errors.New("loopback: redirect uri is not a loopback http address")
)

const donePage = `<!doctype html><html><body><p>You can close this window and return to the application.</p></body></html>`

// Opener launches a browser on url.
type Opener func(ctx context.Context, url string) error

// CommandOpener runs name with args followed by the URL and does not wait for it to exit.
func CommandOpener(name string, args ...string) Opener {
	return func(ctx context.Context, target string) error {
		cmd := exec.CommandContext(ctx, name, append(append([]string(nil), args...), target)...)
		return cmd.Start()
	}
}

// SystemOpener returns the platform's default browser launcher.
func SystemOpener() Opener {
	switch runtime.GOOS {
	case "darwin":
		return CommandOpener("open")
	case "windows":
		return CommandOpener("rundll32", "url.dll,FileProtocolHandler")
	default:
		return CommandOpener("xdg-open")
	}
}

// Tabs captures one redirect per Launch.
type Tabs struct {
	redirect *url.URL
	open     Opener
	logger   *slog.Logger

	mu     sync.Mutex
	server *http.Server
}

type Option func(*Tabs)

func WithLogger(logger *slog.Logger) Option {
	return func(t *Tabs) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// New validates redirectURI as an http URL on 127.0.0.1, ::1 or localhost
// with an explicit port.
func New(redirectURI string, open Opener, opts ...Option) (*Tabs, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("loopback: parse redirect uri: %w", err)
	}
	if u.Scheme != "http" || u.Port() == "" {
		return nil, ErrNotLoopback
	}
	switch u.Hostname() {
	case "127.0.0.1", "::1", "localhost":
	default:
		return nil, ErrNotLoopback
	}
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = ""
	u.Fragment = ""

	t := &Tabs{redirect: u, open: open, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// RedirectURI is the normalized redirect URI callbacks are reported against.
func (t *Tabs) RedirectURI() string {
	return t.redirect.String()
}

// IsAvailable checks that a browser can be launched and the redirect port is free.
func (t *Tabs) IsAvailable(ctx context.Context) error {
	if t.open == nil {
		return ErrNoOpener
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", t.redirect.Host)
	if err != nil {
		return fmt.Errorf("loopback: redirect port unavailable: %w", err)
	}
	return ln.Close()
}

// Launch serves the redirect path, opens the browser on target and returns
// the redirect URI with the query the authorization server appended.
func (t *Tabs) Launch(ctx context.Context, target string) (string, error) {
	if t.open == nil {
		return "", ErrNoOpener
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", t.redirect.Host)
	if err != nil {
		return "", fmt.Errorf("loopback: listen: %w", err)
	}

	callbacks := make(chan string, 1)
	r := chi.NewRouter()
	r.Get(t.redirect.Path, func(w http.ResponseWriter, req *http.Request) {
		cb := *t.redirect
		cb.RawQuery = req.URL.RawQuery
		select {
		case callbacks <- cb.String():
		default:
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(donePage))
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 5 * time.Second}
	t.mu.Lock()
	t.server = srv
	t.mu.Unlock()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Warn("loopback: callback server stopped", "error", err)
		}
	}()
	defer t.shutdown(srv)

	if err := t.open(ctx, target); err != nil {
		return "", fmt.Errorf("loopback: open browser: %w", err)
	}

	select {
	case cb := <-callbacks:
		return cb, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops a callback server left running by an in-flight Launch.
func (t *Tabs) Close(context.Context) error {
	t.mu.Lock()
	srv := t.server
	t.mu.Unlock()
	if srv == nil {
		return nil
	}
	t.shutdown(srv)
	return nil
}

func (t *Tabs) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)

	t.mu.Lock()
	if t.server == srv {
		t.server = nil
	}
	t.mu.Unlock()
}
