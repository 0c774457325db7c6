package authgate

import (
	"errors"
	"net/http"
	"time"
)

// Config holds the full authenticator configuration. Instances are cloned
// by [Builder.WithConfig] and treated as immutable after [Builder.Build].
type Config struct {
	Token   TokenConfig
	Extract ExtractConfig
	HTTP    HTTPConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures signed-token verification. The key material is
// process-wide, injected at startup, and never logged or transmitted.
type TokenConfig struct {
	SigningMethod string // "hs256" (default) or "ed25519"
	Secret        []byte // hs256 verification secret
	PublicKey     []byte // ed25519 verification key
	Leeway        time.Duration
	Issuer        string
	Audience      string
	RequireIAT    bool
	MaxFutureIAT  time.Duration
}

/*
====================================
EXTRACT CONFIG
====================================
*/

// ExtractConfig names the request locations searched for a credential.
// The cookie is checked first and wins when present with a non-empty value;
// an empty cookie value counts as absent and extraction falls through to
// the header.
type ExtractConfig struct {
	CookieName string // default "Authorization"
	HeaderName string // default "Authorization"
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig maps failure kinds to external status codes.
//
// MissingTokenStatus defaults to 404, preserving the reference behavior
// this library replaces. That mapping is a known oddity — 404 conventionally
// means "resource not found" — kept for wire compatibility; set it to 401
// when no legacy client depends on it.
type HTTPConfig struct {
	MissingTokenStatus int
	InvalidTokenStatus int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                bool
	EnableLatencyHistogram bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Key material must still
// be supplied before [Builder.Build].
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: "hs256",
			Leeway:        0,
			MaxFutureIAT:  10 * time.Minute,
		},
		Extract: ExtractConfig{
			CookieName: "Authorization",
			HeaderName: "Authorization",
		},
		HTTP: HTTPConfig{
			MissingTokenStatus: http.StatusNotFound,
			InvalidTokenStatus: http.StatusUnauthorized,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                false,
			EnableLatencyHistogram: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks the configuration for internal consistency. It is called
// by [Builder.Build]; direct users of sub-components may call it earlier.
func (c *Config) Validate() error {
	// Token
	if c.Token.SigningMethod != "hs256" && c.Token.SigningMethod != "ed25519" {
		return errors.New("unsupported token signing method")
	}
	if c.Token.SigningMethod == "hs256" && len(c.Token.Secret) == 0 {
		return errors.New("hs256 requires Secret")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}
	if c.Token.MaxFutureIAT < 0 || c.Token.MaxFutureIAT > 24*time.Hour {
		return errors.New("Token MaxFutureIAT must be between 0 and 24h")
	}

	// Extract
	if c.Extract.CookieName == "" {
		return errors.New("Extract CookieName must not be empty")
	}
	if c.Extract.HeaderName == "" {
		return errors.New("Extract HeaderName must not be empty")
	}

	// HTTP
	if c.HTTP.MissingTokenStatus < 100 || c.HTTP.MissingTokenStatus > 599 {
		return errors.New("HTTP MissingTokenStatus must be a valid status code")
	}
	if c.HTTP.InvalidTokenStatus < 100 || c.HTTP.InvalidTokenStatus > 599 {
		return errors.New("HTTP InvalidTokenStatus must be a valid status code")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
