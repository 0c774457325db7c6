package stores

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/authgate/authgate"
)

// ErrStoreUnavailable wraps Redis transport failures so callers can tell an
// outage from a missing record. The authenticator classifies both the same
// way; the distinction exists for diagnostics and audit only.
var ErrStoreUnavailable = errors.New("user store unavailable")

const nameField = "name"

// Redis is a user store backed by Redis hashes, one hash per user under
// <prefix>:<id>. The "name" field maps to Identity.Name; every other field
// becomes an attribute.
type Redis struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedis returns a Redis store using the given client and key prefix.
// An empty prefix defaults to "agu".
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = "agu"
	}
	return &Redis{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Redis) key(id int64) string {
	return s.prefix + ":" + strconv.FormatInt(id, 10)
}

// Save writes an identity record. Used by seeders and provisioning code;
// the authenticator itself only reads.
func (s *Redis) Save(ctx context.Context, identity authgate.Identity) error {
	fields := make(map[string]string, len(identity.Attributes)+1)
	fields[nameField] = identity.Name
	for k, v := range identity.Attributes {
		if k == nameField {
			continue
		}
		fields[k] = v
	}

	if err := s.redis.HSet(ctx, s.key(identity.ID), fields).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes an identity record. Deleting an absent ID is a no-op.
func (s *Redis) Delete(ctx context.Context, id int64) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// FindByID implements authgate.UserStore.
func (s *Redis) FindByID(ctx context.Context, id int64) (authgate.Identity, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return authgate.Identity{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return authgate.Identity{}, authgate.ErrUserNotFound
	}

	identity := authgate.Identity{
		ID:   id,
		Name: fields[nameField],
	}

	if len(fields) > 1 {
		identity.Attributes = make(map[string]string, len(fields)-1)
		for k, v := range fields {
			if k == nameField {
				continue
			}
			identity.Attributes[k] = v
		}
	}

	return identity, nil
}
