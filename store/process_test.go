package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/effect"
	"github.com/on-the-ground/rex_ive_go/middleware"
	"github.com/on-the-ground/rex_ive_go/reducer"
)

type noDeps struct{}

func countReducer() reducer.Reducer[string, int] {
	return func(_ string, n int) int { return n + 1 }
}

func TestProcess_UnwiredMiddlewareIsFatal(t *testing.T) {
	var mw middleware.EffectMiddleware[string, string, int, noDeps]
	s := New(0, countReducer(), middleware.Middleware[string, string, int](&mw))
	defer s.Close()

	assert.PanicsWithValue(t, middleware.ErrNotWired, func() {
		s.process(action.NewDispatched("a", action.Here()))
	})
	assert.Zero(t, s.State())
}

func TestProcess_ClosedMiddlewareIsFatal(t *testing.T) {
	mw := middleware.OnAction[string, string, int, noDeps](
		func(string, action.Source, middleware.HandlerContext[int, noDeps, string]) effect.Effect[noDeps, string] {
			return effect.DoNothing[noDeps, string]()
		},
	).Inject(noDeps{})
	mw.Close()
	s := New(0, countReducer(), middleware.Middleware[string, string, int](mw))
	defer s.Close()

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, middleware.ErrClosed)
	}()
	s.process(action.NewDispatched("a", action.Here()))
}

func TestProcess_ReducerPanicLeavesStateUsable(t *testing.T) {
	r := reducer.Reducer[string, int](func(act string, n int) int {
		if act == "boom" {
			panic("boom")
		}
		return n + 1
	})
	s := New(0, r, nil)
	defer s.Close()

	assert.NotPanics(t, func() { s.process(action.NewDispatched("boom", action.Here())) })
	assert.Zero(t, s.State())

	s.process(action.NewDispatched("ok", action.Here()))
	assert.Equal(t, 1, s.State())
}
