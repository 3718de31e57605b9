package idempotency

import (
	"context"
	"sync"
	"time"

	"docflow/pkg/domain"
)

// MemoryGuard is an in-process guard for tests and single-instance local
// runs. It honors TTL expiry but shares nothing across processes, so it is
// not suitable for a deployed consumer group.
type MemoryGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryGuard constructs an in-memory guard with the given key TTL.
func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (g *MemoryGuard) HasProcessed(_ context.Context, docID string, stage domain.Stage) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	expiry, ok := g.entries[domain.IdempotencyKey(docID, stage)]
	if !ok {
		return false, nil
	}
	if g.now().After(expiry) {
		delete(g.entries, domain.IdempotencyKey(docID, stage))
		return false, nil
	}
	return true, nil
}

func (g *MemoryGuard) MarkProcessed(_ context.Context, docID string, stage domain.Stage) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entries[domain.IdempotencyKey(docID, stage)] = g.now().Add(g.ttl)
	return nil
}
