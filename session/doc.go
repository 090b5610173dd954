// Package session persists the signed-in user's session in Redis.
//
// # Binary encoding
//
// Sessions are stored as a compact versioned binary blob. Token fields carry
// 32-bit length prefixes since access tokens routinely exceed 255 bytes.
//
// # Architecture boundaries
//
// This package owns the [Store] (Redis operations), the [Session] model and
// the [Keeper], which adapts the store to the coordinator's session
// lifecycle. It does not decode tokens or decide when a session starts.
//
// At most one session is current at a time. Starting a new one replaces the
// previous session atomically.
package session
