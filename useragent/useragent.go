package useragent

import (
	"context"
	"errors"
	"fmt"
)

// Strategy names the user agent that served a round trip.
type Strategy string

const (
	StrategyCustomTabs Strategy = "custom_tabs"
	StrategyWebView    Strategy = "webview"
)

var (
	// ErrClosedByUser is returned when the view is dismissed before the redirect prefix is seen.
	ErrClosedByUser = errors.New("user agent closed before redirect")
	// ErrUnavailable is returned when no strategy can present a URL.
	ErrUnavailable = errors.New("no user agent available")
	// ErrEmptyURL is returned for a request without a URL to present.
	ErrEmptyURL = errors.New("user agent request has empty url")
	// ErrEmptyRedirectPrefix is returned when a web view request cannot detect its redirect.
	ErrEmptyRedirectPrefix = errors.New("user agent request has empty redirect prefix")
)

// Request describes one round trip through a user agent.
type Request struct {
	URL            string
	RedirectPrefix string
	// RTL asks the web view to flip document direction once the first page loads.
	RTL bool
}

// Outcome is the redirect that ended a round trip.
type Outcome struct {
	URL      string
	Strategy Strategy
}

// Presenter shows a URL and waits for the redirect.
type Presenter interface {
	Strategy() Strategy
	Present(ctx context.Context, req Request) (Outcome, error)
}

// Select returns a custom tabs presenter when tabs reports availability and
// fallback otherwise. A nil fallback with unavailable tabs yields ErrUnavailable.
func Select(ctx context.Context, tabs CustomTabs, fallback Presenter) (Presenter, error) {
	var probeErr error
	if tabs != nil {
		probeErr = tabs.IsAvailable(ctx)
		if probeErr == nil {
			return NewCustomTabsPresenter(tabs), nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fallback == nil {
		if probeErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, probeErr)
		}
		return nil, ErrUnavailable
	}
	return fallback, nil
}
