// Package middleware adapts the authgate authenticator to net/http.
//
// [Guard] wraps a handler: it extracts and authenticates the request
// credential, injects the resolved identity into the request context for
// downstream handlers, and on failure renders the classified error as the
// pipeline's single error-reporting stage. A failed request never reaches
// the wrapped handler.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Authenticate calls. It does
// NOT implement authentication logic itself — extraction, verification, and
// lookup all happen inside authgate.Authenticator.
package middleware
