package middleware

import "github.com/on-the-ground/rex_ive_go/action"

// Dispatcher is where a middleware writes its outputs. Implementations must be
// safe to call from any goroutine.
type Dispatcher[A any] interface {
	Dispatch(a A, from action.Source)
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc[A any] func(a A, from action.Source)

func (f DispatchFunc[A]) Dispatch(a A, from action.Source) {
	f(a, from)
}

// IO is a deferred write of zero or more actions. Nothing happens until Run.
type IO[A any] struct {
	run func(Dispatcher[A])
}

func NewIO[A any](run func(out Dispatcher[A])) IO[A] {
	return IO[A]{run: run}
}

// NoIO writes nothing.
func NoIO[A any]() IO[A] {
	return IO[A]{}
}

// IsNoIO reports whether running io would write nothing for sure.
func (io IO[A]) IsNoIO() bool {
	return io.run == nil
}

// Run executes the writes against out, synchronously or later depending on
// what produced them.
func (io IO[A]) Run(out Dispatcher[A]) {
	if io.run != nil {
		io.run(out)
	}
}

// Append runs io, then other.
func (io IO[A]) Append(other IO[A]) IO[A] {
	switch {
	case io.run == nil:
		return other
	case other.run == nil:
		return io
	}
	return IO[A]{run: func(out Dispatcher[A]) {
		io.run(out)
		other.run(out)
	}}
}

// MapIO rewrites every action io writes.
func MapIO[A, B any](io IO[A], f func(A) B) IO[B] {
	if io.run == nil {
		return IO[B]{}
	}
	return IO[B]{run: func(out Dispatcher[B]) {
		io.run(DispatchFunc[A](func(a A, from action.Source) {
			out.Dispatch(f(a), from)
		}))
	}}
}
