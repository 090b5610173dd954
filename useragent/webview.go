package useragent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// EventType names a web view navigation event.
type EventType string

const (
	EventLoadStart EventType = "loadstart"
	EventLoadStop  EventType = "loadstop"
	EventExit      EventType = "exit"
)

// Event is delivered to listeners. URL is set for load events.
type Event struct {
	Type EventType
	URL  string
}

type Listener func(Event)

// ListenerID identifies a registration for RemoveEventListener.
type ListenerID uint64

// View is an open embedded browsing surface.
type View interface {
	AddEventListener(event EventType, fn Listener) ListenerID
	RemoveEventListener(event EventType, id ListenerID)
	ExecuteScript(code string) error
	Close() error
}

// WebView opens embedded views.
type WebView interface {
	Open(url, target, options string) (View, error)
}

const rtlScript = "document.body.style.direction = 'rtl'"

// WebViewPresenter presents through an embedded [WebView].
type WebViewPresenter struct {
	webview WebView
	target  string
	options string
	logger  *slog.Logger
}

type WebViewOption func(*WebViewPresenter)

// WithWindow sets the target and feature options passed to WebView.Open.
func WithWindow(target, options string) WebViewOption {
	return func(p *WebViewPresenter) {
		p.target = target
		p.options = options
	}
}

func WithLogger(logger *slog.Logger) WebViewOption {
	return func(p *WebViewPresenter) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewWebViewPresenter(webview WebView, opts ...WebViewOption) *WebViewPresenter {
	p := &WebViewPresenter{
		webview: webview,
		target:  "_blank",
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *WebViewPresenter) Strategy() Strategy { return StrategyWebView }

type settleResult struct {
	url string
	err error
}

// Present opens req.URL and waits until a loadstart event carries a URL that
// starts with req.RedirectPrefix, the user exits the view, or ctx ends.
func (p *WebViewPresenter) Present(ctx context.Context, req Request) (Outcome, error) {
	if p == nil || p.webview == nil {
		return Outcome{}, ErrUnavailable
	}
	if req.URL == "" {
		return Outcome{}, ErrEmptyURL
	}
	if req.RedirectPrefix == "" {
		return Outcome{}, ErrEmptyRedirectPrefix
	}

	view, err := p.webview.Open(req.URL, p.target, p.options)
	if err != nil {
		return Outcome{}, fmt.Errorf("open web view: %w", err)
	}

	settled := make(chan settleResult, 1)
	var once sync.Once
	settle := func(r settleResult) {
		once.Do(func() { settled <- r })
	}

	regs := &registrations{view: view}
	exitID := regs.add(EventExit, func(Event) {
		settle(settleResult{err: ErrClosedByUser})
	})
	if req.RTL {
		var styled atomic.Bool
		regs.add(EventLoadStop, func(Event) {
			if !styled.CompareAndSwap(false, true) {
				return
			}
			if err := view.ExecuteScript(rtlScript); err != nil {
				p.logger.Debug("useragent: rtl script failed", "error", err)
			}
		})
	}
	regs.add(EventLoadStart, func(ev Event) {
		if !strings.HasPrefix(ev.URL, req.RedirectPrefix) {
			return
		}
		// Disarm exit first: closing the view below emits an exit event.
		regs.remove(EventExit, exitID)
		settle(settleResult{url: ev.URL})
	})

	select {
	case r := <-settled:
		regs.removeAll()
		if r.err != nil {
			return Outcome{}, r.err
		}
		if err := view.Close(); err != nil {
			p.logger.Debug("useragent: closing web view failed", "error", err)
		}
		return Outcome{URL: r.url, Strategy: StrategyWebView}, nil
	case <-ctx.Done():
		regs.removeAll()
		_ = view.Close()
		return Outcome{}, ctx.Err()
	}
}

type registration struct {
	event EventType
	id    ListenerID
}

// registrations pairs every AddEventListener with exactly one RemoveEventListener.
type registrations struct {
	view   View
	mu     sync.Mutex
	active []registration
}

func (r *registrations) add(event EventType, fn Listener) ListenerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.view.AddEventListener(event, fn)
	r.active = append(r.active, registration{event: event, id: id})
	return id
}

func (r *registrations) remove(event EventType, id ListenerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, reg := range r.active {
		if reg.event == event && reg.id == id {
			r.view.RemoveEventListener(event, id)
			r.active = append(r.active[:i], r.active[i+1:]...)
			return
		}
	}
}

func (r *registrations) removeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.active {
		r.view.RemoveEventListener(reg.event, reg.id)
	}
	r.active = nil
}
