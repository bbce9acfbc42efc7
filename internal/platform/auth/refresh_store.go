package auth

import (
	"context"
	"sync"
)

// RefreshStore keeps at most one refresh token per user. Storing a new token
// for a user replaces the previous one.
type RefreshStore interface {
	Store(ctx context.Context, userID, token string) error
	Get(ctx context.Context, userID string) (string, bool, error)
	Remove(ctx context.Context, userID string) error
}

// MemoryRefreshStore is the default single-process RefreshStore.
type MemoryRefreshStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{tokens: make(map[string]string)}
}

func (s *MemoryRefreshStore) Store(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *MemoryRefreshStore) Get(_ context.Context, userID string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tok, ok := s.tokens[userID]
	return tok, ok, nil
}

func (s *MemoryRefreshStore) Remove(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

// CheckRefresh reports whether token is the one currently stored for userID.
func CheckRefresh(ctx context.Context, store RefreshStore, userID, token string) error {
	current, ok, err := store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !ok || current != token {
		return ErrRefreshRevoked
	}
	return nil
}
