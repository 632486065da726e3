package registry

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Bag holds handles that have no token. They are only ever cancelled all at
// once, when their owner closes.
type Bag[H Handle] struct {
	mu      sync.Mutex
	handles mapset.Set[H]
}

func NewBag[H Handle]() *Bag[H] {
	// the bag lock also orders Add against IsDone, so the set itself needs none
	return &Bag[H]{handles: mapset.NewThreadUnsafeSet[H]()}
}

// Add keeps h unless it already finished.
func (b *Bag[H]) Add(h H) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h.IsDone() {
		return false
	}
	return b.handles.Add(h)
}

func (b *Bag[H]) Remove(h H) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handles.Remove(h)
}

func (b *Bag[H]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handles.Cardinality()
}

// Drain empties the bag and returns what it held.
func (b *Bag[H]) Drain() []H {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.handles.ToSlice()
	b.handles.Clear()
	return out
}
