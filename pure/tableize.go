// Package pure memoizes pure functions.
//
// Only wrap functions whose result depends on nothing but their argument: no
// clock, no IO, no captured mutable state. Reducers and state projections are
// the typical candidates.
package pure

import "sync"

// Tableize caches fn by argument. The table keeps two generations of at most
// maxTableSize entries each: when the current one fills up the previous one is
// dropped, so recently used results survive a rotation.
func Tableize[K comparable, V any](fn func(K) V, maxTableSize int) func(K) V {
	if maxTableSize <= 0 {
		panic("pure: maxTableSize should be greater than 0")
	}
	t := &table[K, V]{
		head:    make(map[K]V, maxTableSize),
		maxSize: maxTableSize,
	}
	return func(k K) V {
		if v, ok := t.load(k); ok {
			return v
		}
		v := fn(k)
		t.store(k, v)
		return v
	}
}

type table[K comparable, V any] struct {
	mu      sync.Mutex
	head    map[K]V
	tail    map[K]V
	maxSize int
}

func (t *table[K, V]) load(k K) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v, ok := t.head[k]; ok {
		return v, true
	}
	v, ok := t.tail[k]
	if ok {
		// promote so it survives the next rotation
		t.put(k, v)
	}
	return v, ok
}

func (t *table[K, V]) store(k K, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.put(k, v)
}

func (t *table[K, V]) put(k K, v V) {
	if _, ok := t.head[k]; !ok && len(t.head) >= t.maxSize {
		t.tail = t.head
		t.head = make(map[K]V, t.maxSize)
	}
	t.head[k] = v
}
