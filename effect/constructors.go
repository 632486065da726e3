package effect

import (
	"context"
	"sync"
	"time"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/stream"
)

// Just emits a single action synchronously and completes.
func Just[D, A any](a A, from action.Source) Effect[D, A] {
	return Sequence[D, A](action.NewDispatched(a, from))
}

// Sequence emits the actions in order, synchronously, and completes.
func Sequence[D, A any](actions ...action.Dispatched[A]) Effect[D, A] {
	items := append([]action.Dispatched[A](nil), actions...)
	return New(func(Context[D, A]) stream.Stream[action.Dispatched[A]] {
		return stream.Of(items...)
	})
}

// FromStream backs an effect with an arbitrary failure-free stream.
func FromStream[D, A any](s stream.Stream[action.Dispatched[A]]) Effect[D, A] {
	return New(func(Context[D, A]) stream.Stream[action.Dispatched[A]] {
		return s
	})
}

// Promise calls op on the subscribing goroutine. op must call resolve exactly
// once, from any goroutine; later calls are ignored. The effect completes right
// after the first resolve. ctx is done once the effect is cancelled.
func Promise[D, A any](
	op func(ctx context.Context, c Context[D, A], resolve func(action.Dispatched[A])),
) Effect[D, A] {
	return New(func(c Context[D, A]) stream.Stream[action.Dispatched[A]] {
		return func(ctx context.Context, sink stream.Sink[action.Dispatched[A]]) {
			var once sync.Once
			op(ctx, c, func(d action.Dispatched[A]) {
				once.Do(func() {
					sink.Next(d)
					sink.Complete()
				})
			})
		}
	})
}

// FireAndForget runs body synchronously on subscription and emits nothing.
func FireAndForget[D, A any](body func(D)) Effect[D, A] {
	return New(func(c Context[D, A]) stream.Stream[action.Dispatched[A]] {
		return func(_ context.Context, sink stream.Sink[action.Dispatched[A]]) {
			body(c.Dependencies)
			sink.Complete()
		}
	})
}

// FireAndForgetAsync runs body on its own goroutine and completes when it
// returns. ctx is done once the effect is cancelled.
func FireAndForgetAsync[D, A any](body func(ctx context.Context, deps D)) Effect[D, A] {
	return New(func(c Context[D, A]) stream.Stream[action.Dispatched[A]] {
		return func(ctx context.Context, sink stream.Sink[action.Dispatched[A]]) {
			go func() {
				body(ctx, c.Dependencies)
				sink.Complete()
			}()
		}
	})
}

// FireAndForgetStream subscribes upstream for its side effects only; every
// value it emits is discarded.
func FireAndForgetStream[D, A, T any](upstream stream.Stream[T]) Effect[D, A] {
	return New(func(Context[D, A]) stream.Stream[action.Dispatched[A]] {
		return stream.Filter(
			stream.Map(upstream, func(T) action.Dispatched[A] { return action.Dispatched[A]{} }),
			func(action.Dispatched[A]) bool { return false },
		)
	})
}

// FireAndForgetCatching is FireAndForgetStream for fallible sources. The first
// error ends the effect and is mapped by catch to an optional action; returning
// false swallows it.
func FireAndForgetCatching[D, A, T any](
	upstream stream.Stream[stream.Result[T]],
	catch func(error) (action.Dispatched[A], bool),
) Effect[D, A] {
	return New(func(Context[D, A]) stream.Stream[action.Dispatched[A]] {
		failures := stream.Map(
			stream.Filter(upstream, func(r stream.Result[T]) bool { return r.Err != nil }),
			func(r stream.Result[T]) stream.Result[action.Dispatched[A]] {
				return stream.Result[action.Dispatched[A]]{Err: r.Err}
			},
		)
		return stream.Catch(failures, catch)
	})
}

// Task runs op on its own goroutine and turns its outcome, success or
// failure, into one action. Cancelling the effect cancels op's context and
// drops the outcome.
func Task[D, A, T any](
	op func(ctx context.Context, deps D) (T, error),
	onResult func(stream.Result[T]) action.Dispatched[A],
) Effect[D, A] {
	return New(func(c Context[D, A]) stream.Stream[action.Dispatched[A]] {
		return stream.Map(
			stream.FromFunc(func(ctx context.Context) (T, error) { return op(ctx, c.Dependencies) }),
			onResult,
		)
	})
}

// After emits d once delay elapsed. Cancelling stops the timer.
func After[D, A any](delay time.Duration, d action.Dispatched[A]) Effect[D, A] {
	return FromStream[D](stream.Timer(delay, d))
}

// Merge subscribes to every effect in order and interleaves their actions.
// DoNothing operands are skipped. A single remaining effect is returned as is,
// token included; otherwise the result has no token.
func Merge[D, A any](effects ...Effect[D, A]) Effect[D, A] {
	running := nonEmpty(effects)
	switch len(running) {
	case 0:
		return DoNothing[D, A]()
	case 1:
		return running[0]
	}
	return New(func(c Context[D, A]) stream.Stream[action.Dispatched[A]] {
		streams := make([]stream.Stream[action.Dispatched[A]], len(running))
		for i, e := range running {
			streams[i] = e.run(c)
		}
		return stream.Merge(streams...)
	})
}

// Concat subscribes to each effect after the previous one completed.
// DoNothing operands are skipped, with the same token rule as Merge.
func Concat[D, A any](effects ...Effect[D, A]) Effect[D, A] {
	running := nonEmpty(effects)
	switch len(running) {
	case 0:
		return DoNothing[D, A]()
	case 1:
		return running[0]
	}
	return New(func(c Context[D, A]) stream.Stream[action.Dispatched[A]] {
		streams := make([]stream.Stream[action.Dispatched[A]], len(running))
		for i, e := range running {
			// defer materialisation until the previous effect finished
			streams[i] = func(ctx context.Context, sink stream.Sink[action.Dispatched[A]]) {
				e.run(c)(ctx, sink)
			}
		}
		return stream.Concat(streams...)
	})
}

func nonEmpty[D, A any](effects []Effect[D, A]) []Effect[D, A] {
	out := make([]Effect[D, A], 0, len(effects))
	for _, e := range effects {
		if !e.IsDoNothing() {
			out = append(out, e)
		}
	}
	return out
}
