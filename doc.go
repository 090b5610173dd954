// Package goAuthClient drives the OAuth2 authorization-code flow for a
// native application against a Keycloak-style identity server.
//
// A [Coordinator] presents the authorization URL through custom tabs or an
// embedded web view, exchanges the returned code for tokens, starts the local
// session and then runs two best-effort steps: a profile fetch and a
// login-time report to the user service. Logout presents the server logout URL
// and ends the local session.
//
// # Architecture boundaries
//
// goAuthClient is the public surface. It exposes [Coordinator], [Builder],
// [Config], the collaborator interfaces and value types. Flow orchestration
// and audit dispatch live under internal/. Session storage, token exchange and
// user-agent implementations live in sibling packages (session, keycloak,
// useragent, backend) and are wired in through the Builder.
//
// # What this package must NOT do
//
//   - Verify token signatures. The access token payload is decoded without
//     checking authenticity.
//   - Refresh tokens or juggle multiple accounts.
//   - Hold session state. The [SessionLifecycle] collaborator owns it.
//
// # Concurrency
//
// Coordinator methods are safe for concurrent use. Presenting flows (login
// and logout) are serialized; a second one started while another is showing
// fails with [ErrFlowInProgress].
package goAuthClient
