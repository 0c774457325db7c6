// Package token verifies signed bearer credentials with strict validation
// semantics: the signing algorithm is pinned, expiry and optional issuer or
// audience claims are enforced, and issued-at timestamps too far in the
// future are rejected.
//
// The package also signs tokens for issuers, tests, and load harnesses, but
// the authenticator itself only ever calls [Manager.Verify].
package token
