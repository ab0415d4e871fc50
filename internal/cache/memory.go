package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryBackend implements Backend in process memory with lazy expiry and
// oldest-first eviction.
type MemoryBackend struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	data    map[string]*list.Element
	now     func() time.Time
}

type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// NewMemoryBackend creates an in-memory image cache holding at most maxSize entries.
func NewMemoryBackend(maxSize int) *MemoryBackend {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &MemoryBackend{
		maxSize: maxSize,
		order:   list.New(),
		data:    make(map[string]*list.Element),
		now:     time.Now,
	}
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	entry := el.Value.(*memoryEntry)
	if m.now().After(entry.expiresAt) {
		m.order.Remove(el)
		delete(m.data, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.data[key]; ok {
		m.order.Remove(el)
	}
	m.data[key] = m.order.PushBack(&memoryEntry{
		key:       key,
		value:     value,
		expiresAt: m.now().Add(ttl),
	})

	for m.order.Len() > m.maxSize {
		oldest := m.order.Front()
		m.order.Remove(oldest)
		delete(m.data, oldest.Value.(*memoryEntry).key)
	}
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
