package metadata

import (
	"context"
	"maps"
	"sync"
)

// MemoryRepository keeps entries in process memory. It backs ephemeral runs
// and tests.
type MemoryRepository struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

func (r *MemoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, v...), nil
}

func (r *MemoryRepository) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[key] = append([]byte{}, value...)
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, key)
	return nil
}

func (r *MemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.data)
	return nil
}

func (r *MemoryRepository) List(ctx context.Context) (map[string][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.data), nil
}

// Update stages writes in a copy and swaps it in when fn succeeds.
func (r *MemoryRepository) Update(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	r.mu.Lock()
	staged := &MemoryRepository{data: maps.Clone(r.data)}
	r.mu.Unlock()

	if err := fn(ctx, staged); err != nil {
		return err
	}

	r.mu.Lock()
	r.data = staged.data
	r.mu.Unlock()
	return nil
}
