package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/authgate/authgate"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity attached by [Guard], if any.
func IdentityFromContext(ctx context.Context) (*authgate.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*authgate.Identity)
	return identity, ok
}

// Guard returns middleware that authenticates every request through auth.
// On success the resolved identity is attached to the request context and
// control passes to next; on failure the classified error is rendered and
// next never runs.
func Guard(auth *authgate.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := authgate.WithClientIP(r.Context(), clientIP(r))

			identity, err := auth.Authenticate(ctx, httpRequest{r})
			if err != nil {
				writeAuthError(w, err)
				return
			}

			// request cancelled mid-flight: nothing to attach, nothing to run
			if ctx.Err() != nil {
				return
			}

			ctx = context.WithValue(ctx, identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// httpRequest adapts *http.Request to the authgate.Request surface.
type httpRequest struct {
	r *http.Request
}

func (h httpRequest) Cookie(name string) (string, bool) {
	c, err := h.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return c.Value, true
}

func (h httpRequest) Header(name string) string {
	return h.r.Header.Get(name)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeAuthError is the error-reporting stage: it maps the classified
// failure to its configured status and fixed message. Internal causes are
// never rendered.
func writeAuthError(w http.ResponseWriter, err error) {
	var authErr *authgate.AuthError
	if errors.As(err, &authErr) {
		writeError(w, authErr.Status, authErr.Message)
		return
	}
	writeError(w, http.StatusUnauthorized, "unauthorized")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
