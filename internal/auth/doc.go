// Package auth is the credential lifecycle subsystem: it stores one OAuth
// token record per Google account, decides when a token is usable, refreshes
// expired tokens transparently, checks scope coverage, and produces the
// re-authentication handshake (authorization URL -> authorization code ->
// stored token) when no valid token exists.
//
// All token persistence goes through the Manager so the per-account locking
// discipline stays in one place. The Manager never pre-flights a live Google
// API call: expiry and scope are checked locally, and revoked grants are
// expected to surface as 401/403 from the downstream Workspace API.
package auth
