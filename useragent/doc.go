// Package useragent presents authorization and logout pages to the user and
// reports the redirect that ends the round trip.
//
// Two strategies exist behind the [Presenter] interface:
//
//   - [CustomTabsPresenter] hands the URL to a system-provided browsing surface
//     that reports the callback URL itself.
//   - [WebViewPresenter] opens an embedded view the app controls and watches
//     navigation events for the redirect prefix.
//
// [Select] probes custom tabs availability and falls back to the web view.
//
// # Listener discipline
//
// Every listener a WebViewPresenter registers on a [View] is removed before
// Present returns, whichever way the round trip ends. Only one of redirect
// match, user exit or context cancellation settles a Present call.
package useragent
