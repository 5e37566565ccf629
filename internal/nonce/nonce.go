// Package nonce issues one-time sign-in challenges, at most one outstanding
// challenge per public key.
package nonce

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

type Store interface {
	// Issue replaces any pending nonce for publicKey with a fresh one.
	Issue(ctx context.Context, publicKey string) (string, error)
	// Consume reports whether nonce is the pending one for publicKey and, if so,
	// invalidates it. A mismatch leaves the pending nonce in place.
	Consume(ctx context.Context, publicKey, nonce string) (bool, error)
}

func generate(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

type entry struct {
	value    string
	issuedAt time.Time
}

// MemoryStore keeps nonces in process memory. Zero ttl means no expiry.
type MemoryStore struct {
	mu      sync.Mutex
	pending map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		pending: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Issue(_ context.Context, publicKey string) (string, error) {
	n, err := generate(32)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.pending[publicKey] = entry{value: n, issuedAt: s.now()}
	s.mu.Unlock()
	return n, nil
}

func (s *MemoryStore) Consume(_ context.Context, publicKey, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[publicKey]
	if !ok || nonce == "" || e.value != nonce {
		return false, nil
	}
	delete(s.pending, publicKey)
	if s.ttl > 0 && s.now().Sub(e.issuedAt) > s.ttl {
		return false, nil
	}
	return true, nil
}

// Len returns the number of pending nonces, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
