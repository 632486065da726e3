package effect

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/stream"
)

var ErrTokenNotComparable = errors.New("effect: cancellation token must be comparable")

// Effect produces actions of type A and may read dependencies of type D.
type Effect[D, A any] struct {
	token any
	run   func(Context[D, A]) stream.Stream[action.Dispatched[A]]
}

// New wraps a producer. The producer is called once per subscription.
func New[D, A any](run func(Context[D, A]) stream.Stream[action.Dispatched[A]]) Effect[D, A] {
	return Effect[D, A]{run: run}
}

// DoNothing completes immediately, emits nothing and has no token.
func DoNothing[D, A any]() Effect[D, A] {
	return Effect[D, A]{}
}

// Token is the cancellation token, nil when there is none.
func (e Effect[D, A]) Token() any {
	return e.token
}

// IsDoNothing reports whether running e would produce nothing to subscribe to.
func (e Effect[D, A]) IsDoNothing() bool {
	return e.run == nil
}

// Run materialises the producer. The boolean is false for DoNothing, in which
// case there is nothing to subscribe to.
func (e Effect[D, A]) Run(c Context[D, A]) (stream.Stream[action.Dispatched[A]], bool) {
	if e.run == nil {
		return nil, false
	}
	return e.run(c), true
}

// WithToken returns e carrying token, replacing any previous one. Passing nil
// removes the token.
func (e Effect[D, A]) WithToken(token any) Effect[D, A] {
	mustBeComparable(token)
	e.token = token
	return e
}

// Tokened is WithToken in prefix form, convenient when the token is known at
// construction time.
func Tokened[D, A any](token any, e Effect[D, A]) Effect[D, A] {
	return e.WithToken(token)
}

// Map transforms the emitted actions. Token and cancellation wiring are kept.
func Map[D, A, B any](e Effect[D, A], f func(A) B) Effect[D, B] {
	if e.run == nil {
		return Effect[D, B]{token: e.token}
	}
	return Effect[D, B]{
		token: e.token,
		run: func(c Context[D, B]) stream.Stream[action.Dispatched[B]] {
			inner := Context[D, A]{Dependencies: c.Dependencies, cancel: c.cancel}
			return stream.Map(e.run(inner), func(d action.Dispatched[A]) action.Dispatched[B] {
				return action.MapDispatched(d, f)
			})
		},
	}
}

func mustBeComparable(token any) {
	if token == nil {
		return
	}
	if !reflect.TypeOf(token).Comparable() {
		panic(fmt.Errorf("%w: %T", ErrTokenNotComparable, token))
	}
}
