// Package reader defers building a value until its dependencies are known.
//
// A Reader[D, M] is a pure function from dependencies to M. Readers compose
// before any dependency exists; injecting into a composition injects the same
// dependencies into every part and combines the results.
package reader

import "errors"

var ErrNotWired = errors.New("reader: no factory wired")

// Reader builds an M from dependencies D.
type Reader[D, M any] struct {
	inject func(D) M
}

func New[D, M any](inject func(D) M) Reader[D, M] {
	return Reader[D, M]{inject: inject}
}

// Pure ignores the dependencies and always yields m.
func Pure[D, M any](m M) Reader[D, M] {
	return Reader[D, M]{inject: func(D) M { return m }}
}

// Inject materialises the reader. A zero Reader panics with ErrNotWired.
func (r Reader[D, M]) Inject(deps D) M {
	if r.inject == nil {
		panic(ErrNotWired)
	}
	return r.inject(deps)
}

// Map transforms what the reader builds.
func Map[D, M, N any](r Reader[D, M], f func(M) N) Reader[D, N] {
	return New(func(deps D) N { return f(r.Inject(deps)) })
}

// Contramap adapts a reader needing D to a larger environment E.
func Contramap[E, D, M any](r Reader[D, M], f func(E) D) Reader[E, M] {
	return New(func(env E) M { return r.Inject(f(env)) })
}

// Append composes two readers over the same dependencies.
func Append[D, M any](lhs, rhs Reader[D, M], combine func(M, M) M) Reader[D, M] {
	return New(func(deps D) M { return combine(lhs.Inject(deps), rhs.Inject(deps)) })
}

// Combine is the n-ary Append: every reader receives the same dependencies and
// the materialised values are combined in order.
func Combine[D, M any](combine func(...M) M, readers ...Reader[D, M]) Reader[D, M] {
	parts := append([]Reader[D, M](nil), readers...)
	return New(func(deps D) M {
		built := make([]M, len(parts))
		for i, r := range parts {
			built[i] = r.Inject(deps)
		}
		return combine(built...)
	})
}
