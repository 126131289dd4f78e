package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is a cached value with its expiration.
type entry[V any] struct {
	value      V
	expiration time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// Memo caches the results of a keyed computation.
//
// Concurrent Get calls for the same key share one computation. Errors are
// returned to every waiter but never cached, so the next Get retries.
type Memo[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu    sync.RWMutex
	items map[string]entry[V]
}

// NewMemo creates a Memo. A zero ttl keeps entries until Forget or Clear.
func NewMemo[V any](ttl time.Duration) *Memo[V] {
	return &Memo[V]{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]entry[V]),
	}
}

// Get returns the cached value for key, calling load on a miss.
func (m *Memo[V]) Get(key string, load func() (V, error)) (V, error) {
	if v, ok := m.Peek(key); ok {
		return v, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.Peek(key); ok {
			return v, nil
		}
		v, err := load()
		if err != nil {
			return v, err
		}
		m.set(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Peek returns the cached value without loading.
func (m *Memo[V]) Peek(key string) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.items[key]
	if !ok || e.expired(m.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Forget drops key.
func (m *Memo[V]) Forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// Clear drops every entry.
func (m *Memo[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make(map[string]entry[V])
}

// Len returns the number of stored entries, expired ones included.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memo[V]) set(key string, v V) {
	e := entry[V]{value: v}
	if m.ttl > 0 {
		e.expiration = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = e
}
