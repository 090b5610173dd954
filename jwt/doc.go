// Package jwt extracts identity facts from OAuth access tokens issued by the
// authorization server.
//
// # Trust model
//
// Nothing in this package verifies a signature. The access token arrives over
// the TLS channel used for the code exchange and its payload segment is decoded
// only to learn the subject the server assigned. The [Decoder] is pluggable so a
// verifying implementation can be substituted without touching flow logic.
//
// # What this package must NOT do
//
//   - Treat decoded claims as authenticated.
//   - Import goAuthClient or any internal package.
package jwt
