package tokenstore

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/jun/gophdrive/gateway/internal/auth"
)

// MemoryStore keeps tokens in process memory. Used in DEV_MODE and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens map[string]oauth2.Token
}

var _ auth.TokenStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]oauth2.Token)}
}

func (s *MemoryStore) Load(_ context.Context, userID string) (*oauth2.Token, error) {
	s.mu.RLock()
	t, ok := s.tokens[userID]
	s.mu.RUnlock()
	if !ok {
		return nil, auth.ErrTokenNotFound
	}
	return &t, nil
}

func (s *MemoryStore) Save(_ context.Context, userID string, token *oauth2.Token) error {
	s.mu.Lock()
	s.tokens[userID] = *token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.tokens, userID)
	s.mu.Unlock()
	return nil
}
