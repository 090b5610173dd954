// Package audit relays flow events (authorize, token exchange, session start,
// best-effort side effects, logout) to a caller-supplied sink.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//   - [Event]: structured record keyed by flow id.
//
// # What this package must NOT do
//
//   - Decide which events to emit; the Coordinator does that.
//   - Carry access, refresh or bearer tokens in events.
//   - Import goAuthClient or any sibling internal package.
package audit
