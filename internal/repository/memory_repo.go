package repository

import "sync"

// NewMemoryStateRepo keeps the ledger state in process memory. Used by tests and by the
// DB_DRIVER=memory mode.
func NewMemoryStateRepo() StateRepository {
	return &stateRepo{kv: &memoryBackend{values: make(map[string]string)}}
}

type memoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

func (b *memoryBackend) get(key string) (string, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *memoryBackend) put(key, value string) error {
	b.mu.Lock()
	b.values[key] = value
	b.mu.Unlock()
	return nil
}
