// Package reducer holds the synchronous half of the store: pure functions
// folding an action into the next state.
//
// Reducers must not block, perform IO or keep state of their own. Anything
// that needs to reach the outside world belongs in a middleware.
package reducer

import "github.com/on-the-ground/rex_ive_go/action"

// Reducer computes the next state from an action and the current state.
type Reducer[A, S any] func(act A, state S) S

// Identity returns the state unchanged.
func Identity[A, S any]() Reducer[A, S] {
	return func(_ A, s S) S { return s }
}

// Compose runs the reducers one after another, each seeing the state the
// previous one produced.
func Compose[A, S any](reducers ...Reducer[A, S]) Reducer[A, S] {
	parts := make([]Reducer[A, S], 0, len(reducers))
	for _, r := range reducers {
		if r != nil {
			parts = append(parts, r)
		}
	}
	switch len(parts) {
	case 0:
		return Identity[A, S]()
	case 1:
		return parts[0]
	}
	return func(act A, s S) S {
		for _, r := range parts {
			s = r(act, s)
		}
		return s
	}
}

// Append is Compose(r, other).
func (r Reducer[A, S]) Append(other Reducer[A, S]) Reducer[A, S] {
	return Compose(r, other)
}

// Lift moves r from a local action/state space into a global one. Actions
// inputAction rejects leave the state untouched.
func Lift[GA, LA, GS, LS any](
	r Reducer[LA, LS],
	inputAction func(GA) (LA, bool),
	get func(GS) LS,
	set func(*GS, LS),
) Reducer[GA, GS] {
	return func(act GA, gs GS) GS {
		local, ok := inputAction(act)
		if !ok {
			return gs
		}
		set(&gs, r(local, get(gs)))
		return gs
	}
}

// LiftCollection applies r to the element of a collection whose ID matches
// the action. The collection is copied before it is modified, and actions for
// IDs that are not present leave the state untouched.
func LiftCollection[GA, LA, GS, LS any, ID comparable](
	r Reducer[LA, LS],
	inputAction func(GA) (action.Element[ID, LA], bool),
	get func(GS) []LS,
	set func(*GS, []LS),
	id func(LS) ID,
) Reducer[GA, GS] {
	return func(act GA, gs GS) GS {
		el, ok := inputAction(act)
		if !ok {
			return gs
		}
		elements := get(gs)
		for i, cur := range elements {
			if id(cur) != el.ID {
				continue
			}
			next := append([]LS(nil), elements...)
			next[i] = r(el.Action, cur)
			set(&gs, next)
			return gs
		}
		return gs
	}
}
