package useragent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/goAuthClient/useragent"
	"github.com/MrEthical07/goAuthClient/useragent/useragenttest"
	"github.com/stretchr/testify/require"
)

func TestCustomTabsPresenterReturnsCallback(t *testing.T) {
	tabs := &useragenttest.CustomTabs{CallbackURL: "https://app/cb?code=zz"}
	p := useragent.NewCustomTabsPresenter(tabs)

	out, err := p.Present(context.Background(), useragent.Request{URL: "https://idp/auth"})
	require.NoError(t, err)
	require.Equal(t, "https://app/cb?code=zz", out.URL)
	require.Equal(t, useragent.StrategyCustomTabs, out.Strategy)
	require.Equal(t, []string{"https://idp/auth"}, tabs.Launched())
}

func TestCustomTabsPresenterPropagatesLaunchError(t *testing.T) {
	boom := errors.New("activity not found")
	p := useragent.NewCustomTabsPresenter(&useragenttest.CustomTabs{LaunchErr: boom})

	_, err := p.Present(context.Background(), useragent.Request{URL: "https://idp/auth"})
	require.ErrorIs(t, err, boom)
}

func TestSelectPrefersAvailableCustomTabs(t *testing.T) {
	tabs := &useragenttest.CustomTabs{}
	fallback := useragent.NewWebViewPresenter(&useragenttest.WebView{})

	p, err := useragent.Select(context.Background(), tabs, fallback)
	require.NoError(t, err)
	require.Equal(t, useragent.StrategyCustomTabs, p.Strategy())
	require.Equal(t, 1, tabs.Probes())
}

func TestSelectFallsBackWhenProbeFails(t *testing.T) {
	tabs := &useragenttest.CustomTabs{AvailableErr: errors.New("not installed")}
	fallback := useragent.NewWebViewPresenter(&useragenttest.WebView{})

	p, err := useragent.Select(context.Background(), tabs, fallback)
	require.NoError(t, err)
	require.Equal(t, useragent.StrategyWebView, p.Strategy())
}

func TestSelectWithoutAnyStrategy(t *testing.T) {
	_, err := useragent.Select(context.Background(), nil, nil)
	require.ErrorIs(t, err, useragent.ErrUnavailable)

	tabs := &useragenttest.CustomTabs{AvailableErr: errors.New("not installed")}
	_, err = useragent.Select(context.Background(), tabs, nil)
	require.ErrorIs(t, err, useragent.ErrUnavailable)
}
