// Package middleware defines how a store hands actions to side-effecting code
// and how such code is composed and lifted between action/state spaces.
//
// A Middleware sees every action before (or after) the reducer, may read the
// current state, and answers with an IO: a deferred list of further actions the
// store runs once it is ready. EffectMiddleware is the canonical
// implementation; it turns each action into an effect.Effect and keeps the
// running effects cancellable by token.
package middleware

import "github.com/on-the-ground/rex_ive_go/action"

// GetState returns the state at call time, never a stale snapshot. It may be
// called long after Handle returned.
type GetState[S any] func() S

// Middleware observes input actions and produces output actions.
// Handle is called synchronously once per dispatched action and must neither
// block nor panic.
type Middleware[In, Out, S any] interface {
	Handle(act In, from action.Source, state GetState[S]) IO[Out]
}

// Func adapts a plain function to Middleware.
type Func[In, Out, S any] func(act In, from action.Source, state GetState[S]) IO[Out]

func (f Func[In, Out, S]) Handle(act In, from action.Source, state GetState[S]) IO[Out] {
	return f(act, from, state)
}

// Closer is implemented by middlewares that own running work. Composition and
// lifting adapters forward Close to what they wrap.
type Closer interface {
	Close()
}

// Close closes m if it owns anything.
func Close(m any) {
	if c, ok := m.(Closer); ok {
		c.Close()
	}
}

type identity[In, Out, S any] struct{}

func (identity[In, Out, S]) Handle(In, action.Source, GetState[S]) IO[Out] {
	return NoIO[Out]()
}

// Identity never produces anything. It is the neutral element of Compose.
func Identity[In, Out, S any]() Middleware[In, Out, S] {
	return identity[In, Out, S]{}
}
