package store_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/effect"
	"github.com/on-the-ground/rex_ive_go/middleware"
	"github.com/on-the-ground/rex_ive_go/reducer"
	"github.com/on-the-ground/rex_ive_go/store"
)

func appendAll[A any](act A, s []A) []A {
	return append(append([]A(nil), s...), act)
}

func settled[S any](t *testing.T, s *store.Store[string, S], want S) {
	t.Helper()
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual(want, s.State())
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, s.State())
}

func TestStore_FibonacciSequence(t *testing.T) {
	fib := []int{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}
	mw := middleware.OnAction[int, int, []int, struct{}](
		func(act int, from action.Source, _ middleware.HandlerContext[[]int, struct{}, int]) effect.Effect[struct{}, int] {
			if act != 0 {
				return effect.DoNothing[struct{}, int]()
			}
			out := make([]action.Dispatched[int], len(fib))
			for i, n := range fib {
				out[i] = action.NewDispatched(n, from)
			}
			return effect.Sequence[struct{}](out...)
		},
	).Inject(struct{}{})
	s := store.New([]int(nil), reducer.Reducer[int, []int](appendAll[int]), middleware.Middleware[int, int, []int](mw))
	defer s.Close()

	s.Dispatch(0, action.Here())

	want := append([]int{0}, fib...)
	assert.Eventually(t, func() bool { return len(s.State()) == len(want) }, time.Second, 5*time.Millisecond)
	assert.Equal(t, want, s.State())
	keyed, unkeyed := mw.InFlight()
	assert.Zero(t, keyed)
	assert.Zero(t, unkeyed)
}

func responder(letter string) middleware.OnAction[string, string, []string, string] {
	return func(act string, from action.Source, c middleware.HandlerContext[[]string, string, string]) effect.Effect[string, string] {
		if act != "a0" {
			return effect.DoNothing[string, string]()
		}
		return effect.Just[string](fmt.Sprintf("dispatched %s %s %d %s", letter, act, len(c.State()), c.Dependencies), from)
	}
}

func TestStore_ComposedMiddlewareRoundTrips(t *testing.T) {
	mw := middleware.ComposeReaders(responder("a").Reader(), responder("b").Reader()).Inject("dep")
	s := store.New([]string(nil), reducer.Reducer[string, []string](appendAll[string]), mw)
	defer s.Close()

	s.Dispatch("a0", action.Here())

	settled(t, s, []string{
		"a0",
		"dispatched a a0 1 dep",
		"dispatched b a0 1 dep",
	})
}

func TestStore_BeforeReducerTiming(t *testing.T) {
	mw := middleware.ComposeReaders(responder("a").Reader(), responder("b").Reader()).Inject("dep")
	s := store.New([]string(nil), reducer.Reducer[string, []string](appendAll[string]), mw, store.WithTiming(store.BeforeReducer))
	defer s.Close()

	s.Dispatch("a0", action.Here())

	settled(t, s, []string{
		"a0",
		"dispatched a a0 0 dep",
		"dispatched b a0 0 dep",
	})
}

func TestStore_ReentrantDispatchIsQueued(t *testing.T) {
	var (
		mu      sync.Mutex
		depth   int
		deepest int
	)
	mw := middleware.Func[string, string, []string](func(act string, from action.Source, _ middleware.GetState[[]string]) middleware.IO[string] {
		return middleware.NewIO(func(out middleware.Dispatcher[string]) {
			mu.Lock()
			depth++
			if depth > deepest {
				deepest = depth
			}
			mu.Unlock()
			if len(act) < 4 {
				out.Dispatch(act+"+", from)
			}
			mu.Lock()
			depth--
			mu.Unlock()
		})
	})
	s := store.New([]string(nil), reducer.Reducer[string, []string](appendAll[string]), mw)
	defer s.Close()

	s.Dispatch("x", action.Here())

	settled(t, s, []string{"x", "x+", "x++", "x+++"})
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, deepest, "nested dispatch never recurses into the worker")
}

func TestStore_ConcurrentDispatch(t *testing.T) {
	count := reducer.Reducer[string, int](func(_ string, n int) int { return n + 1 })
	s := store.New(0, count, nil, store.WithQueueHint(256))
	defer s.Close()

	var wg sync.WaitGroup
	for i := range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(fmt.Sprint(i), action.Here())
		}()
	}
	wg.Wait()

	settled(t, s, 200)
}

func TestStore_Observe(t *testing.T) {
	s := store.New(0, reducer.Reducer[string, int](func(_ string, n int) int { return n + 1 }), nil)
	defer s.Close()

	var (
		mu   sync.Mutex
		seen []int
	)
	stop := s.Observe(func(n int) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
	})

	s.Dispatch("a", action.Here())
	s.Dispatch("b", action.Here())
	settled(t, s, 2)

	stop()
	stop()
	s.Dispatch("c", action.Here())
	settled(t, s, 3)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, seen)
}

func TestStore_CloseCancelsEffects(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mw := middleware.OnAction[string, string, []string, struct{}](
		func(act string, from action.Source, _ middleware.HandlerContext[[]string, struct{}, string]) effect.Effect[struct{}, string] {
			if act != "slow" {
				return effect.DoNothing[struct{}, string]()
			}
			return effect.After[struct{}](time.Hour, action.NewDispatched("never", from)).WithToken("slow")
		},
	).Inject(struct{}{})
	s := store.New([]string(nil), reducer.Reducer[string, []string](appendAll[string]), middleware.Middleware[string, string, []string](mw),
		store.WithLogger(zap.New(core)))

	s.Dispatch("slow", action.Here())
	settled(t, s, []string{"slow"})
	assert.Eventually(t, func() bool {
		keyed, _ := mw.InFlight()
		return keyed == 1
	}, time.Second, 5*time.Millisecond)

	s.Close()
	s.Close()

	keyed, unkeyed := mw.InFlight()
	assert.Zero(t, keyed)
	assert.Zero(t, unkeyed)

	s.Dispatch("late", action.Here())
	assert.Equal(t, []string{"slow"}, s.State())
	require.Equal(t, 1, logs.FilterMessage("action dropped, store closed").Len())
}

func TestStore_RecoversFromReducerPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := reducer.Reducer[string, int](func(act string, n int) int {
		if act == "boom" {
			panic("boom")
		}
		return n + 1
	})
	s := store.New(0, r, nil, store.WithLogger(zap.New(core)))
	defer s.Close()

	s.Dispatch("boom", action.Here())
	s.Dispatch("ok", action.Here())

	settled(t, s, 1)
	assert.Equal(t, 1, logs.FilterMessage("panic while processing action").Len())
}

func TestTiming_String(t *testing.T) {
	assert.Equal(t, "after-reducer", store.AfterReducer.String())
	assert.Equal(t, "before-reducer", store.BeforeReducer.String())
	assert.Equal(t, "unknown", store.Timing(9).String())
}

func TestStore_FlushWaitsForSynchronousRoundTrips(t *testing.T) {
	mw := middleware.ComposeReaders(responder("a").Reader(), responder("b").Reader()).Inject("dep")
	s := store.New([]string(nil), reducer.Reducer[string, []string](appendAll[string]), mw)
	defer s.Close()

	s.Dispatch("a0", action.Here())
	require.NoError(t, s.Flush(t.Context()))

	assert.Len(t, s.State(), 3)
}

func TestStore_FlushAfterClose(t *testing.T) {
	gate := make(chan struct{})
	r := reducer.Reducer[string, int](func(_ string, n int) int {
		<-gate
		return n + 1
	})
	s := store.New(0, r, nil)
	s.Dispatch("a", action.Here())
	s.Dispatch("b", action.Here())

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(gate)
	}()
	s.Close()

	assert.ErrorIs(t, s.Flush(t.Context()), store.ErrClosed)
}
