package action

// Dispatched pairs an action with the Source it was dispatched from.
type Dispatched[A any] struct {
	Action A
	Source Source
}

// NewDispatched wraps a with the given source.
func NewDispatched[A any](a A, from Source) Dispatched[A] {
	return Dispatched[A]{Action: a, Source: from}
}

// MapDispatched transforms the action and keeps the source.
func MapDispatched[A, B any](d Dispatched[A], f func(A) B) Dispatched[B] {
	return Dispatched[B]{Action: f(d.Action), Source: d.Source}
}

// Element addresses an action to one element of a keyed collection.
type Element[ID comparable, A any] struct {
	ID     ID
	Action A
}

// As narrows a global value to L by type assertion. It fits where an
// input-action mapping of the form func(G) (L, bool) is expected.
func As[L, G any](g G) (L, bool) {
	l, ok := any(g).(L)
	return l, ok
}
