package history

import (
	"context"
	"strings"
	"sync"
)

// memoryStore keeps snapshots in process; used when no backend is configured and in tests.
type memoryStore struct {
	mu       sync.RWMutex
	byPlayer map[string][]Snapshot // playerID -> append order, latest last
}

func NewMemoryStore() Store {
	return &memoryStore{byPlayer: make(map[string][]Snapshot)}
}

func (m *memoryStore) Append(ctx context.Context, snap Snapshot) error {
	snap, err := normalize(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.byPlayer[snap.PlayerID] = append(m.byPlayer[snap.PlayerID], snap)
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Latest(ctx context.Context, playerID string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.byPlayer[strings.TrimSpace(playerID)]
	if len(list) == 0 {
		return nil, nil
	}
	latest := list[len(list)-1]
	return &latest, nil
}

func (m *memoryStore) List(ctx context.Context, playerID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.byPlayer[strings.TrimSpace(playerID)]
	out := make([]Snapshot, 0, min(limit, len(list)))
	for i := len(list) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}
