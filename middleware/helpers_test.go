package middleware_test

import (
	"sync"

	"github.com/on-the-ground/rex_ive_go/action"
)

type recorder[A any] struct {
	mu  sync.Mutex
	got []A
}

func (r *recorder[A]) Dispatch(a A, _ action.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, a)
}

func (r *recorder[A]) Actions() []A {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]A(nil), r.got...)
}

func (r *recorder[A]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) log(entry string) func() {
	return func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		j.entries = append(j.entries, entry)
	}
}

func (j *journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

func constant[S any](s S) func() S {
	return func() S { return s }
}
