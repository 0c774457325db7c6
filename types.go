package authgate

import "context"

// Identity is the resolved principal attached to a request after successful
// authentication.
type Identity struct {
	// ID is the subject identifier the token was issued for.
	ID int64
	// Name is the human-readable account name.
	Name string
	// Attributes carries store-specific data (role, tenant, email, ...).
	// May be nil.
	Attributes map[string]string
}

// UserStore is the collaborator holding known user identities, queried by
// subject identifier with exact equality. Implementations must support
// concurrent lookups; the authenticator performs no locking around calls.
//
// FindByID returns [ErrUserNotFound] when no identity matches. Any error,
// not-found included, is classified as [KindInvalidToken] at the
// authenticator boundary.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (Identity, error)
}

// Request is the minimal inbound surface the authenticator reads: a cookie
// accessor and a header accessor. The middleware subpackage adapts
// *http.Request; non-HTTP hosts can implement it directly.
type Request interface {
	// Cookie returns the value of the named cookie and whether it is set.
	Cookie(name string) (string, bool)
	// Header returns the value of the named header, or "" when absent.
	Header(name string) string
}
