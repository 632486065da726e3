package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Empty completes immediately without emitting.
func Empty[T any]() Stream[T] {
	return func(_ context.Context, sink Sink[T]) {
		sink.Complete()
	}
}

// Just emits v and completes, synchronously.
func Just[T any](v T) Stream[T] {
	return Of(v)
}

// Of emits values in order and completes, synchronously.
func Of[T any](values ...T) Stream[T] {
	return func(ctx context.Context, sink Sink[T]) {
		for _, v := range values {
			if ctx.Err() != nil {
				return
			}
			sink.Next(v)
		}
		sink.Complete()
	}
}

// FromChannel forwards everything received on ch and completes when ch is
// closed.
func FromChannel[T any](ch <-chan T) Stream[T] {
	return func(ctx context.Context, sink Sink[T]) {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case v, ok := <-ch:
					if !ok {
						sink.Complete()
						return
					}
					sink.Next(v)
				}
			}
		}()
	}
}

// Timer emits v once after d. Cancelling stops the timer.
func Timer[T any](d time.Duration, v T) Stream[T] {
	return func(ctx context.Context, sink Sink[T]) {
		t := time.NewTimer(d)
		go func() {
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
				sink.Next(v)
				sink.Complete()
			}
		}()
	}
}

// Map transforms every value of s.
func Map[T, R any](s Stream[T], f func(T) R) Stream[R] {
	return func(ctx context.Context, sink Sink[R]) {
		s(ctx, Sink[T]{
			next:     func(v T) { sink.Next(f(v)) },
			complete: sink.Complete,
		})
	}
}

// Filter drops the values failing predicate.
func Filter[T any](s Stream[T], predicate func(T) bool) Stream[T] {
	return func(ctx context.Context, sink Sink[T]) {
		s(ctx, Sink[T]{
			next: func(v T) {
				if predicate(v) {
					sink.Next(v)
				}
			},
			complete: sink.Complete,
		})
	}
}

// Merge subscribes to every stream in order and interleaves their values as
// they arrive. It completes once all of them completed.
func Merge[T any](streams ...Stream[T]) Stream[T] {
	return func(ctx context.Context, sink Sink[T]) {
		if len(streams) == 0 {
			sink.Complete()
			return
		}
		var remaining atomic.Int32
		remaining.Store(int32(len(streams)))
		for _, s := range streams {
			if ctx.Err() != nil {
				return
			}
			var once sync.Once
			s(ctx, Sink[T]{
				next: sink.Next,
				complete: func() {
					once.Do(func() {
						if remaining.Add(-1) == 0 {
							sink.Complete()
						}
					})
				},
			})
		}
	}
}

// Concat subscribes to each stream only after the previous one completed.
func Concat[T any](streams ...Stream[T]) Stream[T] {
	return func(ctx context.Context, sink Sink[T]) {
		var run func(i int)
		run = func(i int) {
			if i == len(streams) {
				sink.Complete()
				return
			}
			if ctx.Err() != nil {
				return
			}
			var once sync.Once
			streams[i](ctx, Sink[T]{
				next:     sink.Next,
				complete: func() { once.Do(func() { run(i + 1) }) },
			})
		}
		run(0)
	}
}

// Events are lifecycle callbacks for HandleEvents. Nil fields are skipped.
type Events[T any] struct {
	OnSubscribe func()
	OnNext      func(T)
	OnComplete  func()
	OnCancel    func()
}

// HandleEvents observes the lifecycle of s without changing its values.
// OnCancel runs synchronously inside Subscription.Cancel.
func HandleEvents[T any](s Stream[T], ev Events[T]) Stream[T] {
	return func(ctx context.Context, sink Sink[T]) {
		if ev.OnCancel != nil {
			OnCancel(ctx, ev.OnCancel)
		}
		if ev.OnSubscribe != nil {
			ev.OnSubscribe()
		}
		s(ctx, Sink[T]{
			next: func(v T) {
				if ev.OnNext != nil {
					ev.OnNext(v)
				}
				sink.Next(v)
			},
			complete: func() {
				if ev.OnComplete != nil {
					ev.OnComplete()
				}
				sink.Complete()
			},
		})
	}
}
