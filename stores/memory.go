package stores

import (
	"context"
	"sync"

	"github.com/authgate/authgate"
)

// Memory is a mutex-guarded in-memory user store. Intended for tests,
// examples, and small fixed directories.
type Memory struct {
	mu    sync.RWMutex
	users map[int64]authgate.Identity
}

// NewMemory returns an empty Memory store, optionally seeded.
func NewMemory(seed ...authgate.Identity) *Memory {
	m := &Memory{
		users: make(map[int64]authgate.Identity, len(seed)),
	}
	for _, id := range seed {
		m.users[id.ID] = cloneIdentity(id)
	}
	return m
}

// Put inserts or replaces an identity.
func (m *Memory) Put(identity authgate.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[identity.ID] = cloneIdentity(identity)
}

// Delete removes an identity. Deleting an absent ID is a no-op.
func (m *Memory) Delete(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

// FindByID implements authgate.UserStore.
func (m *Memory) FindByID(ctx context.Context, id int64) (authgate.Identity, error) {
	if err := ctx.Err(); err != nil {
		return authgate.Identity{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	identity, ok := m.users[id]
	if !ok {
		return authgate.Identity{}, authgate.ErrUserNotFound
	}

	return cloneIdentity(identity), nil
}

func cloneIdentity(id authgate.Identity) authgate.Identity {
	out := id
	if len(id.Attributes) > 0 {
		out.Attributes = make(map[string]string, len(id.Attributes))
		for k, v := range id.Attributes {
			out.Attributes[k] = v
		}
	} else {
		out.Attributes = nil
	}
	return out
}
