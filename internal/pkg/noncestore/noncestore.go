// Package noncestore keeps single-use login challenges
package noncestore

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
)

// Store holds one pending challenge per address
type Store interface {
	// Put stores the challenge for addr, replacing any pending one
	Put(ctx context.Context, addr common.Address, challenge string, ttl time.Duration) error
	// Take returns and removes the pending challenge for addr.
	// It fails with apperrors.ErrNonceNotFound when none is pending.
	Take(ctx context.Context, addr common.Address) (string, error)
	Close() error
}

type memoryEntry struct {
	challenge string
	expiresAt time.Time
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu      sync.Mutex
	entries map[common.Address]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[common.Address]memoryEntry),
		now:     time.Now,
	}
}

// Put implements Store
func (m *MemoryStore) Put(_ context.Context, addr common.Address, challenge string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	// drop expired challenges while we hold the lock
	for a, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, a)
		}
	}
	m.entries[addr] = memoryEntry{challenge: challenge, expiresAt: now.Add(ttl)}
	return nil
}

// Take implements Store
func (m *MemoryStore) Take(_ context.Context, addr common.Address) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[addr]
	if !ok {
		return "", apperrors.ErrNonceNotFound
	}
	delete(m.entries, addr)
	if !m.now().Before(e.expiresAt) {
		return "", apperrors.ErrNonceNotFound
	}
	return e.challenge, nil
}

// Close implements Store
func (m *MemoryStore) Close() error { return nil }
