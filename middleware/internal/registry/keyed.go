// Package registry keeps track of running effect subscriptions for the effect
// middleware. Nothing outside the middleware touches it.
package registry

import "sync"

// Handle is a running unit of work that can be cancelled.
type Handle interface {
	comparable
	Cancel()
	IsDone() bool
}

// Keyed maps cancellation tokens to at most one running handle each. Tokens
// are spread over shards so unrelated tokens do not contend.
type Keyed[H Handle] struct {
	shards []*shard[H]
}

type shard[H Handle] struct {
	mu      sync.Mutex
	handles map[any]H
}

func NewKeyed[H Handle](numShards int) *Keyed[H] {
	if numShards <= 0 {
		numShards = 1
	}
	shards := make([]*shard[H], numShards)
	for i := range shards {
		shards[i] = &shard[H]{handles: make(map[any]H)}
	}
	return &Keyed[H]{shards: shards}
}

func (k *Keyed[H]) shardOf(token any) *shard[H] {
	return k.shards[getIndexByHash(token, len(k.shards))]
}

// Take removes and returns the handle filed under token. The caller owns the
// returned handle and is expected to cancel it.
func (k *Keyed[H]) Take(token any) (H, bool) {
	s := k.shardOf(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.handles[token]
	if ok {
		delete(s.handles, token)
	}
	return h, ok
}

// Put files h under token unless h already finished. A handle that was filed
// there in the meantime is displaced and returned for the caller to cancel.
func (k *Keyed[H]) Put(token any, h H) (displaced H, found bool) {
	s := k.shardOf(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.IsDone() {
		return displaced, false
	}
	displaced, found = s.handles[token]
	s.handles[token] = h
	return displaced, found
}

// RemoveIf removes the entry under token only if it is h.
func (k *Keyed[H]) RemoveIf(token any, h H) bool {
	s := k.shardOf(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.handles[token]; ok && cur == h {
		delete(s.handles, token)
		return true
	}
	return false
}

func (k *Keyed[H]) Len() int {
	n := 0
	for _, s := range k.shards {
		s.mu.Lock()
		n += len(s.handles)
		s.mu.Unlock()
	}
	return n
}

// Drain empties the registry and returns what it held.
func (k *Keyed[H]) Drain() []H {
	var out []H
	for _, s := range k.shards {
		s.mu.Lock()
		for token, h := range s.handles {
			out = append(out, h)
			delete(s.handles, token)
		}
		s.mu.Unlock()
	}
	return out
}
