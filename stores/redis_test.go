package stores

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authgate/authgate"
)

func newRedisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client, "agu"), mr
}

func TestRedisSaveAndFind(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	err := store.Save(ctx, authgate.Identity{
		ID:         1,
		Name:       "alice",
		Attributes: map[string]string{"role": "admin", "email": "alice@example.com"},
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	identity, err := store.FindByID(ctx, 1)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if identity.ID != 1 || identity.Name != "alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if identity.Attributes["role"] != "admin" || identity.Attributes["email"] != "alice@example.com" {
		t.Fatalf("unexpected attributes: %+v", identity.Attributes)
	}
}

func TestRedisFindMissingUser(t *testing.T) {
	store, _ := newRedisStore(t)

	if _, err := store.FindByID(context.Background(), 404); !errors.Is(err, authgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRedisDelete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, authgate.Identity{ID: 2, Name: "bob"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(ctx, 2); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.FindByID(ctx, 2); !errors.Is(err, authgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
	// deleting again is a no-op
	if err := store.Delete(ctx, 2); err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
}

func TestRedisUnavailable(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, authgate.Identity{ID: 3, Name: "carol"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	mr.Close()

	_, err := store.FindByID(ctx, 3)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, authgate.ErrUserNotFound) {
		t.Fatal("outage must not look like a missing user")
	}
}

func TestRedisDefaultPrefix(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, "")
	ctx := context.Background()

	if err := store.Save(ctx, authgate.Identity{ID: 9, Name: "dave"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !mr.Exists("agu:9") {
		t.Fatal("expected record under default prefix agu:")
	}
}
