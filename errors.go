package authgate

import "errors"

// ErrorKind classifies an authentication failure. The set is closed: every
// internal failure is normalized to one of these before leaving the package.
type ErrorKind uint8

const (
	// KindMissingToken means no credential was found in the cookie or header.
	KindMissingToken ErrorKind = iota
	// KindInvalidToken covers signature, structure, and expiry failures as
	// well as unknown subjects and user-store errors.
	KindInvalidToken
)

var (
	// ErrMissingToken is the sentinel matched by failures of [KindMissingToken].
	ErrMissingToken = errors.New("authentication token missing")
	// ErrInvalidToken is the sentinel matched by failures of [KindInvalidToken].
	ErrInvalidToken = errors.New("invalid authentication token")
	// ErrUserNotFound is returned by [UserStore] implementations when no
	// identity matches the subject identifier. The authenticator folds it
	// into [KindInvalidToken]; it never reaches callers of Authenticate.
	ErrUserNotFound = errors.New("user not found")
	// ErrAuthenticatorNotReady is returned when Authenticate is called on a
	// nil or unbuilt authenticator.
	ErrAuthenticatorNotReady = errors.New("authenticator not initialized")
)

// AuthError is the classified failure returned by [Authenticator.Authenticate].
// Status and Message are the external signal; the triggering cause is kept
// for diagnostics and is reachable through errors.Unwrap but must never be
// rendered to the client.
type AuthError struct {
	Kind    ErrorKind
	Status  int
	Message string
	cause   error
}

func (e *AuthError) Error() string {
	return e.Message
}

// Unwrap exposes the internal cause for diagnostics.
func (e *AuthError) Unwrap() error {
	return e.cause
}

// Is matches the sentinel for the error's kind, so callers can use
// errors.Is(err, ErrInvalidToken) without inspecting the struct.
func (e *AuthError) Is(target error) bool {
	switch e.Kind {
	case KindMissingToken:
		return target == ErrMissingToken
	case KindInvalidToken:
		return target == ErrInvalidToken
	}
	return false
}

func kindString(k ErrorKind) string {
	switch k {
	case KindMissingToken:
		return "missing_token"
	case KindInvalidToken:
		return "invalid_token"
	}
	return "unknown"
}
