package authgate

import "strings"

// bearerPrefix is the literal scheme prefix stripped from header
// credentials. Exactly this prefix, including the trailing space; no
// further trimming is applied to the remainder.
const bearerPrefix = "Bearer "

// extractCredential resolves the canonical credential for a request.
//
// The named cookie is checked first: a non-empty value is the credential
// verbatim, and the header is not consulted. An empty cookie value counts
// as absent. Otherwise the named header must start with "Bearer "; the
// credential is the exact remainder. At most one credential is resolved
// per request. No side effects.
func extractCredential(r Request, cfg ExtractConfig) (string, bool) {
	if value, ok := r.Cookie(cfg.CookieName); ok && value != "" {
		return value, true
	}

	header := r.Header(cfg.HeaderName)
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	credential := header[len(bearerPrefix):]
	if credential == "" {
		return "", false
	}

	return credential, true
}
