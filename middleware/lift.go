package middleware

import "github.com/on-the-ground/rex_ive_go/action"

// Lift moves m from a local action/state space into a global one.
//
// inputAction picks the global actions m cares about; anything it rejects is
// answered with NoIO and never reaches m. outputAction wraps what m produces
// and state projects the global state each time m reads it.
func Lift[GIn, LIn, LOut, GOut, GS, LS any](
	m Middleware[LIn, LOut, LS],
	inputAction func(GIn) (LIn, bool),
	outputAction func(LOut) GOut,
	state func(GS) LS,
) Middleware[GIn, GOut, GS] {
	return LiftInput(LiftOutput(LiftState(m, state), outputAction), inputAction)
}

type inputLifted[GIn, LIn, Out, S any] struct {
	inner       Middleware[LIn, Out, S]
	inputAction func(GIn) (LIn, bool)
}

func LiftInput[GIn, LIn, Out, S any](m Middleware[LIn, Out, S], inputAction func(GIn) (LIn, bool)) Middleware[GIn, Out, S] {
	return &inputLifted[GIn, LIn, Out, S]{inner: m, inputAction: inputAction}
}

func (l *inputLifted[GIn, LIn, Out, S]) Handle(act GIn, from action.Source, state GetState[S]) IO[Out] {
	local, ok := l.inputAction(act)
	if !ok {
		return NoIO[Out]()
	}
	return l.inner.Handle(local, from, state)
}

func (l *inputLifted[GIn, LIn, Out, S]) Close() { Close(l.inner) }

type outputLifted[In, LOut, GOut, S any] struct {
	inner        Middleware[In, LOut, S]
	outputAction func(LOut) GOut
}

func LiftOutput[In, LOut, GOut, S any](m Middleware[In, LOut, S], outputAction func(LOut) GOut) Middleware[In, GOut, S] {
	return &outputLifted[In, LOut, GOut, S]{inner: m, outputAction: outputAction}
}

func (l *outputLifted[In, LOut, GOut, S]) Handle(act In, from action.Source, state GetState[S]) IO[GOut] {
	return MapIO(l.inner.Handle(act, from, state), l.outputAction)
}

func (l *outputLifted[In, LOut, GOut, S]) Close() { Close(l.inner) }

type stateLifted[In, Out, GS, LS any] struct {
	inner Middleware[In, Out, LS]
	state func(GS) LS
}

func LiftState[In, Out, GS, LS any](m Middleware[In, Out, LS], state func(GS) LS) Middleware[In, Out, GS] {
	return &stateLifted[In, Out, GS, LS]{inner: m, state: state}
}

func (l *stateLifted[In, Out, GS, LS]) Handle(act In, from action.Source, state GetState[GS]) IO[Out] {
	return l.inner.Handle(act, from, func() LS { return l.state(state()) })
}

func (l *stateLifted[In, Out, GS, LS]) Close() { Close(l.inner) }
