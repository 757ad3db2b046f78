package ipfs

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in process, addressed the same way the content API addresses them.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte

	removed []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

func (m *MemoryStore) Add(ctx context.Context, doc any) (string, error) {
	raw, err := Encode(doc)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	hash, err := HashOf(raw)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.docs[hash] = append([]byte(nil), raw...)
	m.mu.Unlock()
	return hash, nil
}

func (m *MemoryStore) GetRaw(ctx context.Context, hash string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.docs[hash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	return append([]byte(nil), raw...), nil
}

func (m *MemoryStore) Remove(ctx context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, hash)
	m.removed = append(m.removed, hash)
	return nil
}

// Removed lists every hash passed to Remove, in call order.
func (m *MemoryStore) Removed() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.removed...)
}

// Len returns the number of stored documents.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
