// Package stream is the minimal cold-stream abstraction effects are built on.
//
// A Stream does nothing until it is subscribed. Producers push values into a
// Sink and must stop once their context is done. Synchronous producers emit on
// the subscribing goroutine, so Subscribe returns only after they completed;
// asynchronous ones start their own goroutines and complete later.
package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Stream is a cold producer of zero or more values.
type Stream[T any] func(ctx context.Context, sink Sink[T])

// Sink receives the values of a Stream.
type Sink[T any] struct {
	next     func(T)
	complete func()
}

// NewSink builds a Sink from callbacks. Either may be nil.
func NewSink[T any](next func(T), complete func()) Sink[T] {
	if next == nil {
		next = func(T) {}
	}
	if complete == nil {
		complete = func() {}
	}
	return Sink[T]{next: next, complete: complete}
}

// Next forwards one value downstream.
func (s Sink[T]) Next(v T) {
	if s.next != nil {
		s.next(v)
	}
}

// Complete signals that no more values follow.
func (s Sink[T]) Complete() {
	if s.complete != nil {
		s.complete()
	}
}

var ErrCancelled = errors.New("stream: subscription cancelled")

// Subscribe starts s. next receives every value until the subscription is
// cancelled or completes; complete runs at most once, on natural completion
// only. Cancelling parent cancels the subscription.
func (s Stream[T]) Subscribe(parent context.Context, next func(T), complete func()) *Subscription {
	ctx, cancelFn := context.WithCancel(parent)
	sub := newSubscription(cancelFn)
	ctx = context.WithValue(ctx, subscriptionKey{}, sub)
	sub.watch(context.AfterFunc(parent, sub.Cancel))

	s(ctx, Sink[T]{
		next: func(v T) {
			if next != nil && sub.active() {
				next(v)
			}
		},
		complete: func() {
			if sub.finish(stateCompleted) && complete != nil {
				complete()
			}
		},
	})
	return sub
}

// Collect subscribes to s and blocks until it completes, returning every value
// in emission order. If ctx ends first the subscription is cancelled and the
// values seen so far are returned with an error wrapping ErrCancelled.
func Collect[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	var (
		mu  sync.Mutex
		out []T
	)
	sub := s.Subscribe(ctx, func(v T) {
		mu.Lock()
		out = append(out, v)
		mu.Unlock()
	}, nil)
	<-sub.Done()

	mu.Lock()
	defer mu.Unlock()
	if sub.Completed() {
		return out, nil
	}
	if err := ctx.Err(); err != nil {
		return out, fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return out, ErrCancelled
}

// OnCancel registers fn to run synchronously when the subscription driving ctx
// is cancelled. It runs immediately if that already happened, and never if the
// subscription completed. It reports whether ctx belongs to a subscription.
func OnCancel(ctx context.Context, fn func()) bool {
	sub, ok := ctx.Value(subscriptionKey{}).(*Subscription)
	if !ok {
		return false
	}
	sub.addCancelHook(fn)
	return true
}

type subscriptionKey struct{}
