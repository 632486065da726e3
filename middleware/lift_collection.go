package middleware

import (
	"sync"

	"github.com/on-the-ground/rex_ive_go/action"
)

type collectionLifted[GIn, LIn, LOut, GOut, GS, LS any, ID comparable] struct {
	inner        Middleware[LIn, LOut, LS]
	inputAction  func(GIn) (action.Element[ID, LIn], bool)
	outputAction func(action.Element[ID, LOut]) GOut
	collection   func(GS) []LS
	id           func(LS) ID
}

// LiftCollection runs m against one element of a collection held in the
// global state. Actions addressed to an ID that is not in the collection when
// the action is handled are dropped. Outputs are tagged with the same ID.
//
// Once handled, m keeps reading its element by ID. If the element disappears
// later, m sees the last value it was found with.
func LiftCollection[GIn, LIn, LOut, GOut, GS, LS any, ID comparable](
	m Middleware[LIn, LOut, LS],
	inputAction func(GIn) (action.Element[ID, LIn], bool),
	outputAction func(action.Element[ID, LOut]) GOut,
	collection func(GS) []LS,
	id func(LS) ID,
) Middleware[GIn, GOut, GS] {
	return &collectionLifted[GIn, LIn, LOut, GOut, GS, LS, ID]{
		inner:        m,
		inputAction:  inputAction,
		outputAction: outputAction,
		collection:   collection,
		id:           id,
	}
}

func (l *collectionLifted[GIn, LIn, LOut, GOut, GS, LS, ID]) find(gs GS, want ID) (LS, bool) {
	for _, el := range l.collection(gs) {
		if l.id(el) == want {
			return el, true
		}
	}
	var zero LS
	return zero, false
}

func (l *collectionLifted[GIn, LIn, LOut, GOut, GS, LS, ID]) Handle(act GIn, from action.Source, state GetState[GS]) IO[GOut] {
	el, ok := l.inputAction(act)
	if !ok {
		return NoIO[GOut]()
	}
	last, ok := l.find(state(), el.ID)
	if !ok {
		return NoIO[GOut]()
	}
	var mu sync.Mutex
	local := func() LS {
		cur, found := l.find(state(), el.ID)
		mu.Lock()
		defer mu.Unlock()
		if found {
			last = cur
		}
		return last
	}
	return MapIO(l.inner.Handle(el.Action, from, local), func(out LOut) GOut {
		return l.outputAction(action.Element[ID, LOut]{ID: el.ID, Action: out})
	})
}

func (l *collectionLifted[GIn, LIn, LOut, GOut, GS, LS, ID]) Close() { Close(l.inner) }
