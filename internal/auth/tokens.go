package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an issued panel token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// TokenStore issues and validates opaque bearer tokens.
type TokenStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]time.Time // token -> expiry
}

// NewTokenStore creates a TokenStore whose tokens live for ttl.
func NewTokenStore(ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenStore{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
}

// Issue creates a new token.
func (s *TokenStore) Issue() string {
	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = s.now().Add(s.ttl)
	s.mu.Unlock()

	return token
}

// Valid reports whether token was issued and has not expired. Expired tokens
// are removed on lookup.
func (s *TokenStore) Valid(token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.tokens, token)
		return false
	}
	return true
}

// Prune drops every expired token and returns how many were removed.
func (s *TokenStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, expiry := range s.tokens {
		if now.After(expiry) {
			delete(s.tokens, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked tokens.
func (s *TokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
