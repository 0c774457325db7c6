// Package authgate authenticates inbound requests: it extracts a bearer
// credential from a cookie or Authorization header, verifies it as a signed
// token, resolves the token subject against a pluggable user store, and
// either yields the resolved [Identity] or fails with a classified
// [AuthError].
//
// The package is designed for concurrent server workloads: Authenticator
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build]. Each Authenticate call is independent; no state
// is shared between requests.
//
// # Architecture boundaries
//
// authgate is the public surface. It exposes [Authenticator], [Builder],
// [Config], and value types (Identity, AuditEvent, MetricsSnapshot). Token
// cryptography lives in the token subpackage, user-store implementations in
// stores, and HTTP adaptation in middleware.
//
// # What this package must NOT do
//
//   - Issue credentials. Authenticate consumes already-issued tokens only.
//   - Write HTTP responses. Failure rendering belongs to the hosting
//     pipeline (see the middleware subpackage).
//   - Expose internal failure reasons to callers. External errors carry a
//     fixed message per [ErrorKind]; the underlying cause is reachable only
//     through errors.Unwrap and audit events.
//
// # Failure taxonomy
//
// Exactly two kinds leave this package: [KindMissingToken] when no
// credential is found on the request, and [KindInvalidToken] for everything
// else — bad signature, malformed structure, expiry, unknown subject, and
// user-store failures. Unknown subject is deliberately indistinguishable
// from a forged token.
package authgate
