package stream

import (
	"context"
	"sync"
)

// Result carries either a value or the error that replaced it. A stream of
// Results is how a fallible source is represented; it must go through Catch
// (or an effect constructor that does) before it can back an effect.
type Result[T any] struct {
	Value T
	Err   error
}

func ResultFrom[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}

// FromFunc runs fn on its own goroutine once subscribed and emits its outcome.
// The outcome is dropped if the subscription was cancelled meanwhile.
func FromFunc[T any](fn func(context.Context) (T, error)) Stream[Result[T]] {
	return func(ctx context.Context, sink Sink[Result[T]]) {
		go func() {
			res := ResultFrom(fn(ctx))
			if ctx.Err() != nil {
				return
			}
			sink.Next(res)
			sink.Complete()
		}()
	}
}

// Catch unwraps the values of s. The first error stops s and is replaced by
// whatever handler returns; returning false swallows it. Either way the
// resulting stream then completes.
func Catch[T any](s Stream[Result[T]], handler func(error) (T, bool)) Stream[T] {
	return func(parent context.Context, sink Sink[T]) {
		ctx, cancel := context.WithCancel(parent)
		var once sync.Once
		s(ctx, Sink[Result[T]]{
			next: func(r Result[T]) {
				if r.Err == nil {
					if ctx.Err() == nil {
						sink.Next(r.Value)
					}
					return
				}
				once.Do(func() {
					cancel()
					if v, ok := handler(r.Err); ok {
						sink.Next(v)
					}
					sink.Complete()
				})
			},
			complete: func() {
				once.Do(func() {
					cancel()
					sink.Complete()
				})
			},
		})
	}
}
