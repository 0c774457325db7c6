package authgate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/authgate/authgate/token"
)

// Caller-facing messages. Fixed per failure kind: the internal cause stays
// behind errors.Unwrap and audit events.
const (
	msgMissingToken = "Authentication token missing"
	msgInvalidToken = "Wrong authentication token"
)

// Authenticator gates protected requests. Construct through [Builder.Build];
// the zero value is not usable. Safe for concurrent use.
type Authenticator struct {
	config  Config
	tokens  *token.Manager
	store   UserStore
	audit   *auditDispatcher
	metrics *Metrics
}

// Authenticate resolves and verifies the request's bearer credential, looks
// up the token subject in the user store, and returns the resolved identity.
//
// Failures are always a *[AuthError] of one of two kinds: [KindMissingToken]
// when no credential is present, [KindInvalidToken] for everything else.
// A store lookup never happens for a cancelled ctx, so a cancelled request
// contributes no side effects beyond metrics.
func (a *Authenticator) Authenticate(ctx context.Context, r Request) (*Identity, error) {
	if a == nil || a.tokens == nil || a.store == nil {
		return nil, ErrAuthenticatorNotReady
	}
	if a.metrics.LatencyEnabled() {
		start := time.Now()
		defer a.metrics.Observe(MetricAuthLatency, time.Since(start))
	}

	credential, ok := extractCredential(r, a.config.Extract)
	if !ok {
		a.metrics.Inc(MetricAuthMissingToken)
		a.emitAudit(ctx, 0, KindMissingToken, nil)
		return nil, a.failMissing()
	}

	claims, err := a.tokens.Verify(credential)
	if err != nil {
		a.metrics.Inc(MetricAuthInvalidToken)
		a.emitAudit(ctx, 0, KindInvalidToken, err)
		return nil, a.failInvalid(err)
	}

	if err := ctx.Err(); err != nil {
		return nil, a.failInvalid(err)
	}

	identity, err := a.store.FindByID(ctx, claims.ID)
	if err != nil {
		// Unknown subject and store failures alike: indistinguishable from
		// a forged token at this boundary.
		a.metrics.Inc(MetricAuthInvalidToken)
		a.emitAudit(ctx, claims.ID, KindInvalidToken, err)
		return nil, a.failInvalid(err)
	}

	a.metrics.Inc(MetricAuthSuccess)
	a.emitSuccess(ctx, identity.ID)

	return &identity, nil
}

// Close releases the audit dispatcher. Pending events are drained first.
func (a *Authenticator) Close() {
	if a == nil {
		return
	}
	if a.audit != nil {
		a.audit.Close()
	}
}

// AuditDropped reports how many audit events were dropped on a full buffer.
func (a *Authenticator) AuditDropped() uint64 {
	if a == nil || a.audit == nil {
		return 0
	}
	return a.audit.Dropped()
}

// MetricsSnapshot copies the current counters and histograms.
func (a *Authenticator) MetricsSnapshot() MetricsSnapshot {
	if a == nil || a.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return a.metrics.Snapshot()
}

func (a *Authenticator) failMissing() *AuthError {
	return &AuthError{
		Kind:    KindMissingToken,
		Status:  a.config.HTTP.MissingTokenStatus,
		Message: msgMissingToken,
	}
}

func (a *Authenticator) failInvalid(cause error) *AuthError {
	return &AuthError{
		Kind:    KindInvalidToken,
		Status:  a.config.HTTP.InvalidTokenStatus,
		Message: msgInvalidToken,
		cause:   cause,
	}
}

func (a *Authenticator) emitSuccess(ctx context.Context, userID int64) {
	if a.audit == nil {
		return
	}
	a.audit.Emit(ctx, AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Outcome:   "success",
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   true,
	})
}

func (a *Authenticator) emitAudit(ctx context.Context, userID int64, kind ErrorKind, cause error) {
	if a.audit == nil {
		return
	}
	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Outcome:   kindString(kind),
		UserID:    userID,
		IP:        clientIPFromContext(ctx),
		Success:   false,
	}
	if cause != nil {
		event.Reason = cause.Error()
	}
	a.audit.Emit(ctx, event)
}
