package useragent

import "context"

// CustomTabs is the system-provided fast browsing capability.
type CustomTabs interface {
	// IsAvailable returns nil when Launch can be used on this device.
	IsAvailable(ctx context.Context) error
	// Launch presents url and returns the callback URL the surface was redirected to.
	Launch(ctx context.Context, url string) (string, error)
	Close(ctx context.Context) error
}

// CustomTabsPresenter presents through [CustomTabs].
type CustomTabsPresenter struct {
	tabs CustomTabs
}

func NewCustomTabsPresenter(tabs CustomTabs) *CustomTabsPresenter {
	return &CustomTabsPresenter{tabs: tabs}
}

func (p *CustomTabsPresenter) Strategy() Strategy { return StrategyCustomTabs }

// Present launches req.URL. The surface owns redirect detection, so
// req.RedirectPrefix and req.RTL are not consulted. Launch errors are
// returned unchanged.
func (p *CustomTabsPresenter) Present(ctx context.Context, req Request) (Outcome, error) {
	if p == nil || p.tabs == nil {
		return Outcome{}, ErrUnavailable
	}
	if req.URL == "" {
		return Outcome{}, ErrEmptyURL
	}
	callback, err := p.tabs.Launch(ctx, req.URL)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{URL: callback, Strategy: StrategyCustomTabs}, nil
}
