package reducer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/reducer"
)

func add(n int, s int) int    { return s + n }
func double(_ int, s int) int { return s * 2 }
func minus(n int, s int) int  { return s - n }

func TestCompose_MonoidLaws(t *testing.T) {
	id := reducer.Identity[int, int]()
	a, b, c := reducer.Reducer[int, int](add), reducer.Reducer[int, int](double), reducer.Reducer[int, int](minus)

	for _, act := range []int{0, 1, 5, -3} {
		for _, s := range []int{0, 2, 10} {
			assert.Equal(t, a(act, s), reducer.Compose(id, a)(act, s))
			assert.Equal(t, a(act, s), reducer.Compose(a, id)(act, s))
			assert.Equal(t,
				reducer.Compose(reducer.Compose(a, b), c)(act, s),
				reducer.Compose(a, reducer.Compose(b, c))(act, s),
			)
		}
	}
	assert.Equal(t, 7, reducer.Compose[int, int]()(1, 7))
}

func TestCompose_RunsInOrder(t *testing.T) {
	r := reducer.Reducer[int, int](add).Append(double)
	assert.Equal(t, 8, r(1, 3))

	r = reducer.Reducer[int, int](double).Append(add)
	assert.Equal(t, 7, r(1, 3))
}

type (
	appAction struct {
		Counter *int
		Todo    *action.Element[int, string]
	}
	todo struct {
		ID   int
		Text string
	}
	appState struct {
		Counter int
		Todos   []todo
	}
)

func counter(a appAction) (int, bool) {
	if a.Counter == nil {
		return 0, false
	}
	return *a.Counter, true
}

func TestLift(t *testing.T) {
	lifted := reducer.Lift(
		reducer.Reducer[int, int](add),
		counter,
		func(s appState) int { return s.Counter },
		func(s *appState, c int) { s.Counter = c },
	)

	five := 5
	next := lifted(appAction{Counter: &five}, appState{Counter: 1})
	assert.Equal(t, 6, next.Counter)

	untouched := appState{Counter: 1, Todos: []todo{{ID: 1}}}
	assert.Equal(t, untouched, lifted(appAction{}, untouched))
}

func rename(text string, t todo) todo {
	t.Text = text
	return t
}

func TestLiftCollection(t *testing.T) {
	lifted := reducer.LiftCollection(
		reducer.Reducer[string, todo](rename),
		func(a appAction) (action.Element[int, string], bool) {
			if a.Todo == nil {
				return action.Element[int, string]{}, false
			}
			return *a.Todo, true
		},
		func(s appState) []todo { return s.Todos },
		func(s *appState, todos []todo) { s.Todos = todos },
		func(t todo) int { return t.ID },
	)
	before := appState{Todos: []todo{{ID: 1, Text: "milk"}, {ID: 2, Text: "eggs"}}}

	after := lifted(appAction{Todo: &action.Element[int, string]{ID: 2, Action: "bread"}}, before)
	assert.Equal(t, []todo{{ID: 1, Text: "milk"}, {ID: 2, Text: "bread"}}, after.Todos)
	assert.Equal(t, "eggs", before.Todos[1].Text, "previous state is not mutated")

	missing := lifted(appAction{Todo: &action.Element[int, string]{ID: 9, Action: "bread"}}, before)
	assert.Equal(t, before, missing)
}
