package useragent_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goAuthClient/useragent"
	"github.com/MrEthical07/goAuthClient/useragent/useragenttest"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func TestWebViewPresenterMatchesRedirectPrefix(t *testing.T) {
	web := &useragenttest.WebView{
		OnOpen: func(v *useragenttest.View) {
			if !v.WaitForListener(useragent.EventLoadStart, waitFor) {
				return
			}
			v.Navigate("https://idp/auth/realms/sunbird/login")
			v.Navigate("https://app/cb?code=abc123")
		},
	}
	p := useragent.NewWebViewPresenter(web, useragent.WithWindow("_blank", "zoom=no"))

	out, err := p.Present(context.Background(), useragent.Request{
		URL:            "https://idp/auth",
		RedirectPrefix: "https://app/cb",
	})
	require.NoError(t, err)
	require.Equal(t, "https://app/cb?code=abc123", out.URL)
	require.Equal(t, useragent.StrategyWebView, out.Strategy)

	views := web.Views()
	require.Len(t, views, 1)
	require.Equal(t, "_blank", views[0].Target)
	require.Equal(t, "zoom=no", views[0].Options)
	require.True(t, views[0].Closed())
	require.Zero(t, views[0].ListenerCount())
}

func TestWebViewPresenterExitBeforeMatchIsClosedByUser(t *testing.T) {
	web := &useragenttest.WebView{
		OnOpen: func(v *useragenttest.View) {
			if !v.WaitForListener(useragent.EventLoadStart, waitFor) {
				return
			}
			v.Navigate("https://idp/auth/realms/sunbird/login")
			v.Dismiss()
			// A late redirect after the exit must not produce a second outcome.
			v.Navigate("https://app/cb?code=late")
		},
	}
	p := useragent.NewWebViewPresenter(web)

	_, err := p.Present(context.Background(), useragent.Request{
		URL:            "https://idp/auth",
		RedirectPrefix: "https://app/cb",
	})
	require.ErrorIs(t, err, useragent.ErrClosedByUser)
	require.Zero(t, web.Views()[0].ListenerCount())
}

func TestWebViewPresenterInjectsRTLOnce(t *testing.T) {
	web := &useragenttest.WebView{
		OnOpen: func(v *useragenttest.View) {
			if !v.WaitForListener(useragent.EventLoadStart, waitFor) {
				return
			}
			v.Navigate("https://idp/page1")
			v.Navigate("https://idp/page2")
			v.Navigate("https://app/cb?code=x")
		},
	}
	p := useragent.NewWebViewPresenter(web)

	_, err := p.Present(context.Background(), useragent.Request{
		URL:            "https://idp/auth",
		RedirectPrefix: "https://app/cb",
		RTL:            true,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"document.body.style.direction = 'rtl'"}, web.Views()[0].Scripts())
}

func TestWebViewPresenterContextCancelClosesView(t *testing.T) {
	web := &useragenttest.WebView{}
	p := useragent.NewWebViewPresenter(web)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Present(ctx, useragent.Request{URL: "https://idp/auth", RedirectPrefix: "https://app/cb"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	v := web.Views()[0]
	require.True(t, v.Closed())
	require.Zero(t, v.ListenerCount())
}

func TestWebViewPresenterRejectsIncompleteRequests(t *testing.T) {
	p := useragent.NewWebViewPresenter(&useragenttest.WebView{})

	_, err := p.Present(context.Background(), useragent.Request{RedirectPrefix: "https://app/cb"})
	require.ErrorIs(t, err, useragent.ErrEmptyURL)

	_, err = p.Present(context.Background(), useragent.Request{URL: "https://idp/auth"})
	require.ErrorIs(t, err, useragent.ErrEmptyRedirectPrefix)
}

func TestWebViewPresenterOpenError(t *testing.T) {
	boom := errors.New("no window")
	p := useragent.NewWebViewPresenter(&useragenttest.WebView{OpenErr: boom})

	_, err := p.Present(context.Background(), useragent.Request{URL: "https://idp/auth", RedirectPrefix: "https://app/cb"})
	require.ErrorIs(t, err, boom)
}

func TestWebViewPresenterRepeatedCyclesLeaveNoListeners(t *testing.T) {
	var cycle atomic.Int32
	web := &useragenttest.WebView{
		OnOpen: func(v *useragenttest.View) {
			if !v.WaitForListener(useragent.EventLoadStart, waitFor) {
				return
			}
			if cycle.Add(1)%2 == 0 {
				v.Dismiss()
				return
			}
			v.Navigate("https://app/cb?code=c")
		},
	}
	p := useragent.NewWebViewPresenter(web)
	req := useragent.Request{URL: "https://idp/auth", RedirectPrefix: "https://app/cb", RTL: true}

	for i := 0; i < 4; i++ {
		_, _ = p.Present(context.Background(), req)
	}
	for _, v := range web.Views() {
		require.Zero(t, v.ListenerCount())
	}
}
