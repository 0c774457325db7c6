package authgate

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/authgate/authgate/token"
)

type mockStore struct {
	users map[int64]Identity
	err   error
	calls atomic.Int64
}

func (m *mockStore) FindByID(ctx context.Context, id int64) (Identity, error) {
	m.calls.Add(1)
	if m.err != nil {
		return Identity{}, m.err
	}
	identity, ok := m.users[id]
	if !ok {
		return Identity{}, ErrUserNotFound
	}
	return identity, nil
}

func testSecret() []byte {
	return []byte("s3cr3t")
}

func newTestAuthenticator(t *testing.T, store UserStore) *Authenticator {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Token.Secret = testSecret()

	auth, err := New().WithConfig(cfg).WithUserStore(store).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return auth
}

func mintToken(t *testing.T, secret []byte, subject int64) string {
	t.Helper()

	tm, err := token.NewManager(token.Config{
		SigningMethod: token.MethodHS256,
		Secret:        secret,
		AccessTTL:     time.Minute,
	})
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	signed, err := tm.Sign(subject)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return signed
}

func aliceStore() *mockStore {
	return &mockStore{
		users: map[int64]Identity{
			1: {ID: 1, Name: "alice"},
		},
	}
}

func TestAuthenticateHeaderSuccess(t *testing.T) {
	store := aliceStore()
	auth := newTestAuthenticator(t, store)
	tok := mintToken(t, testSecret(), 1)

	identity, err := auth.Authenticate(context.Background(), fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + tok},
	})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if identity.ID != 1 || identity.Name != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestAuthenticateCookieTakesPrecedence(t *testing.T) {
	store := &mockStore{
		users: map[int64]Identity{
			1: {ID: 1, Name: "alice"},
			2: {ID: 2, Name: "bob"},
		},
	}
	auth := newTestAuthenticator(t, store)

	identity, err := auth.Authenticate(context.Background(), fakeRequest{
		cookies: map[string]string{"Authorization": mintToken(t, testSecret(), 1)},
		headers: map[string]string{"Authorization": "Bearer " + mintToken(t, testSecret(), 2)},
	})
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if identity.ID != 1 {
		t.Fatalf("expected cookie identity 1, got %d", identity.ID)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	auth := newTestAuthenticator(t, aliceStore())

	_, err := auth.Authenticate(context.Background(), fakeRequest{
		headers: map[string]string{"Authorization": "Basic not-a-bearer"},
	})
	if !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Kind != KindMissingToken {
		t.Fatalf("expected KindMissingToken, got %v", authErr.Kind)
	}
	if authErr.Status != http.StatusNotFound {
		t.Fatalf("expected default status 404, got %d", authErr.Status)
	}
	if authErr.Message != "Authentication token missing" {
		t.Fatalf("unexpected message %q", authErr.Message)
	}
}

func TestAuthenticateWrongSecretIsInvalidNotMissing(t *testing.T) {
	auth := newTestAuthenticator(t, aliceStore())
	forged := mintToken(t, []byte("other-secret"), 1)

	_, err := auth.Authenticate(context.Background(), fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + forged},
	})
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if errors.Is(err, ErrMissingToken) {
		t.Fatal("wrong-secret failure must not classify as missing")
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", authErr.Status)
	}
	if authErr.Message != "Wrong authentication token" {
		t.Fatalf("unexpected message %q", authErr.Message)
	}
	if authErr.Unwrap() == nil {
		t.Fatal("expected verification cause to be retained")
	}
}

func TestAuthenticateUnknownSubjectIndistinguishableFromForgery(t *testing.T) {
	auth := newTestAuthenticator(t, aliceStore())
	tok := mintToken(t, testSecret(), 2) // validly signed, no user 2

	_, err := auth.Authenticate(context.Background(), fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + tok},
	})
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Message != "Wrong authentication token" {
		t.Fatalf("unknown subject leaked a distinct message: %q", authErr.Message)
	}
}

func TestAuthenticateStoreFailureNormalized(t *testing.T) {
	store := &mockStore{err: errors.New("connection refused")}
	auth := newTestAuthenticator(t, store)
	tok := mintToken(t, testSecret(), 1)

	_, err := auth.Authenticate(context.Background(), fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + tok},
	})
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("store error escaped unclassified: %T", err)
	}
	if authErr.Message != "Wrong authentication token" {
		t.Fatalf("store failure leaked into message: %q", authErr.Message)
	}
}

func TestAuthenticateCancelledContextSkipsLookup(t *testing.T) {
	store := aliceStore()
	auth := newTestAuthenticator(t, store)
	tok := mintToken(t, testSecret(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	identity, err := auth.Authenticate(ctx, fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + tok},
	})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if identity != nil {
		t.Fatal("no identity may be produced for a cancelled request")
	}
	if store.calls.Load() != 0 {
		t.Fatalf("store consulted %d times despite cancellation", store.calls.Load())
	}
}

func TestAuthenticateIdempotent(t *testing.T) {
	auth := newTestAuthenticator(t, aliceStore())
	tok := mintToken(t, testSecret(), 1)
	req := fakeRequest{
		headers: map[string]string{"Authorization": "Bearer " + tok},
	}

	first, err := auth.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("first authenticate failed: %v", err)
	}
	second, err := auth.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("second authenticate failed: %v", err)
	}
	if first.ID != second.ID || first.Name != second.Name {
		t.Fatalf("idempotence violated: %+v vs %+v", first, second)
	}
}

func TestAuthenticateMissingStatusConfigurable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = testSecret()
	cfg.HTTP.MissingTokenStatus = http.StatusUnauthorized

	auth, err := New().WithConfig(cfg).WithUserStore(aliceStore()).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	_, err = auth.Authenticate(context.Background(), fakeRequest{})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if authErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected configured 401, got %d", authErr.Status)
	}
}

func TestAuthenticateMetricsCounters(t *testing.T) {
	store := aliceStore()

	auth, err := New().
		WithSecret(testSecret()).
		WithUserStore(store).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	ctx := context.Background()
	ok := fakeRequest{headers: map[string]string{"Authorization": "Bearer " + mintToken(t, testSecret(), 1)}}
	missing := fakeRequest{}
	invalid := fakeRequest{headers: map[string]string{"Authorization": "Bearer garbage"}}

	if _, err := auth.Authenticate(ctx, ok); err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	_, _ = auth.Authenticate(ctx, missing)
	_, _ = auth.Authenticate(ctx, invalid)

	snap := auth.MetricsSnapshot()
	if snap.Counters[MetricAuthSuccess] != 1 {
		t.Fatalf("expected 1 success, got %d", snap.Counters[MetricAuthSuccess])
	}
	if snap.Counters[MetricAuthMissingToken] != 1 {
		t.Fatalf("expected 1 missing, got %d", snap.Counters[MetricAuthMissingToken])
	}
	if snap.Counters[MetricAuthInvalidToken] != 1 {
		t.Fatalf("expected 1 invalid, got %d", snap.Counters[MetricAuthInvalidToken])
	}
}

func TestAuthenticateNotReady(t *testing.T) {
	var auth *Authenticator
	if _, err := auth.Authenticate(context.Background(), fakeRequest{}); !errors.Is(err, ErrAuthenticatorNotReady) {
		t.Fatalf("expected ErrAuthenticatorNotReady, got %v", err)
	}
}
