package cache

import (
	"container/list"
	"sync"
	"time"
)

type memoryItem[V any] struct {
	key      string
	value    V
	expireAt time.Time
}

// Memory is a bounded in-process cache with per-entry expiry. When full, the
// least recently used entry is evicted. A background sweep drops expired
// entries until Close is called.
type Memory[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front is most recently used
	maxSize int
	now     func() time.Time

	stop      chan struct{}
	closeOnce sync.Once
}

// NewMemory creates a cache sized by opts (1000 entries, 5m sweep by default).
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := &MemoryConfig{
		MaxSize:         1000,
		CleanupInterval: 5 * time.Minute,
		Clock:           time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Memory[V]{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: cfg.MaxSize,
		now:     cfg.Clock,
		stop:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go m.sweep(cfg.CleanupInterval)
	}
	return m
}

// Get returns the live value under key and marks it recently used.
func (m *Memory[V]) Get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	el, ok := m.items[key]
	if !ok {
		return zero, false
	}
	it := el.Value.(*memoryItem[V])
	if m.now().After(it.expireAt) {
		m.remove(el)
		return zero, false
	}
	m.order.MoveToFront(el)
	return it.value, true
}

// Set stores value for ttl, evicting the least recently used entry when full.
func (m *Memory[V]) Set(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expireAt := m.now().Add(ttl)
	if el, ok := m.items[key]; ok {
		it := el.Value.(*memoryItem[V])
		it.value, it.expireAt = value, expireAt
		m.order.MoveToFront(el)
		return
	}
	for m.order.Len() >= m.maxSize {
		m.remove(m.order.Back())
	}
	m.items[key] = m.order.PushFront(&memoryItem[V]{key: key, value: value, expireAt: expireAt})
}

// Delete drops keys.
func (m *Memory[V]) Delete(keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		if el, ok := m.items[k]; ok {
			m.remove(el)
		}
	}
}

// Len counts entries, expired ones included until they are swept.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

// Purge removes every expired entry and returns how many were dropped.
func (m *Memory[V]) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*memoryItem[V]).expireAt) {
			m.remove(el)
			n++
		}
		el = prev
	}
	return n
}

// Close stops the background sweep.
func (m *Memory[V]) Close() error {
	m.closeOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory[V]) remove(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*memoryItem[V]).key)
}

func (m *Memory[V]) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.Purge()
		}
	}
}
