package store

import (
	"context"
	"sync"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// MemoryStore holds the document in process. Writes are checked against the
// snapshot version the caller read, like PostgresStore.
type MemoryStore struct {
	mu   sync.Mutex
	snap *domain.Snapshot
}

func NewMemoryStore(seed *domain.Snapshot) *MemoryStore {
	if seed == nil {
		seed = domain.NewSnapshot()
	}
	snap := normalize(seed.Clone())
	snap.Version = 1
	return &MemoryStore{snap: snap}
}

func (s *MemoryStore) Read(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snap.Clone(), nil
}

func (s *MemoryStore) Write(ctx context.Context, snap *domain.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Version != s.snap.Version {
		return ErrVersionConflict
	}

	next := normalize(snap.Clone())
	next.Version = s.snap.Version + 1
	s.snap = next
	snap.Version = next.Version

	return nil
}
