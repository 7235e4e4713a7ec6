package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	userID    uint64
	expiresAt time.Time
}

// MemoryStore is an in-process session store guarded by a mutex. It backs
// tests and local development when Redis is unreachable; sessions do not
// survive a restart and are not shared between instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.entries[hashToken(token)] = memoryEntry{userID: userID, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return token, nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (uint64, error) {
	key := hashToken(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, ErrNotFound
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return 0, ErrNotFound
	}
	return e.userID, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, hashToken(token))
	s.mu.Unlock()
	return nil
}
