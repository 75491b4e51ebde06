package cache

import (
	"sync"
	"time"
)

// Timed is a concurrent-safe key value store where entries expire after a
// fixed lifetime. Expired entries are evicted lazily on access.
type Timed struct {
	ttl   time.Duration
	mtx   sync.RWMutex
	items map[any]*timedItem
	now   func() time.Time
}

type timedItem struct {
	value   any
	expires time.Time
}

// NewTimedCache returns a new timed cache with the supplied entry lifetime.
// A non-positive ttl keeps entries forever.
func NewTimedCache(ttl time.Duration) *Timed {
	return &Timed{
		ttl:   ttl,
		items: make(map[any]*timedItem),
		now:   time.Now,
	}
}

// Add stores a value against key, resetting its lifetime
func (t *Timed) Add(key, value any) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	i := &timedItem{value: value}
	if t.ttl > 0 {
		i.expires = t.now().Add(t.ttl)
	}
	t.items[key] = i
}

// Get returns the value held against key, or nil when absent or expired
func (t *Timed) Get(key any) any {
	t.mtx.RLock()
	i, ok := t.items[key]
	t.mtx.RUnlock()
	if !ok {
		return nil
	}
	if !i.expires.IsZero() && t.now().After(i.expires) {
		t.mtx.Lock()
		delete(t.items, key)
		t.mtx.Unlock()
		return nil
	}
	return i.value
}

// Contains checks key presence without extending its lifetime
func (t *Timed) Contains(key any) bool {
	return t.Get(key) != nil
}

// Remove deletes key from the cache, reporting whether it was held
func (t *Timed) Remove(key any) bool {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if _, ok := t.items[key]; !ok {
		return false
	}
	delete(t.items, key)
	return true
}

// Clear removes every entry
func (t *Timed) Clear() {
	t.mtx.Lock()
	t.items = make(map[any]*timedItem)
	t.mtx.Unlock()
}

// Len returns the number of entries currently held, expired or not
func (t *Timed) Len() int {
	t.mtx.RLock()
	defer t.mtx.RUnlock()
	return len(t.items)
}
