// Package store wires a reducer and a middleware into a running loop.
//
// Actions are processed one at a time on a single worker goroutine, in the
// order they were dispatched. Dispatch never waits for processing, so effects
// and observers may dispatch again from anywhere, including from inside a
// synchronous effect; such actions are queued behind the current one.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/effect"
	"github.com/on-the-ground/rex_ive_go/middleware"
	"github.com/on-the-ground/rex_ive_go/reader"
	"github.com/on-the-ground/rex_ive_go/reducer"
)

// ErrClosed is returned by Flush once the store is closed.
var ErrClosed = errors.New("store: closed")

type Store[A, S any] struct {
	reducer    reducer.Reducer[A, S]
	middleware middleware.Middleware[A, A, S]
	logger     *zap.Logger
	timing     Timing

	stateMu   sync.RWMutex
	state     S
	observers map[uint64]func(S)
	nextObs   uint64

	queueMu sync.Mutex
	queue   []action.Dispatched[A]
	ready   chan struct{}
	pending atomic.Int64

	cancel context.CancelFunc
	done   chan struct{}
	closed atomic.Bool
}

// New starts a store. The middleware is owned by the store from now on and is
// closed together with it.
func New[A, S any](
	initial S,
	r reducer.Reducer[A, S],
	m middleware.Middleware[A, A, S],
	opts ...Option,
) *Store[A, S] {
	o := newOptions(opts)
	if r == nil {
		r = reducer.Identity[A, S]()
	}
	if m == nil {
		m = middleware.Identity[A, A, S]()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store[A, S]{
		reducer:    r,
		middleware: m,
		logger:     o.logger,
		timing:     o.timing,
		state:      initial,
		observers:  make(map[uint64]func(S)),
		queue:      make([]action.Dispatched[A], 0, o.queueHint),
		ready:      make(chan struct{}, 1),
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	started := make(chan struct{})
	go func() {
		defer close(s.done)
		close(started)
		for {
			select {
			case <-s.ready:
				for _, d := range s.drain() {
					if ctx.Err() != nil {
						return
					}
					s.process(d)
					s.pending.Add(-1)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	<-started

	s.logger.Debug("store started", zap.Stringer("timing", s.timing))
	return s
}

// Dispatch queues act. It is safe from any goroutine and returns immediately.
// Actions dispatched after Close are dropped.
func (s *Store[A, S]) Dispatch(act A, from action.Source) {
	if s.closed.Load() {
		s.logger.Warn("action dropped, store closed", zap.Object("source", from))
		return
	}
	s.pending.Add(1)
	s.queueMu.Lock()
	s.queue = append(s.queue, action.NewDispatched(act, from))
	s.queueMu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Store[A, S]) drain() []action.Dispatched[A] {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	out := s.queue
	s.queue = make([]action.Dispatched[A], 0, cap(out))
	return out
}

// process runs one action. Panics raised by reducers and effects are logged
// and the action is skipped; wiring mistakes are re-raised.
func (s *Store[A, S]) process(d action.Dispatched[A]) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok && isContractViolation(err) {
				panic(r)
			}
			s.logger.Error("panic while processing action",
				zap.Any("error", r),
				zap.Object("source", d.Source))
		}
	}()

	io := s.middleware.Handle(d.Action, d.Source, s.State)
	if s.timing == BeforeReducer {
		io.Run(s)
	}

	// the worker is the only writer
	next := s.reducer(d.Action, s.State())

	s.stateMu.Lock()
	s.state = next
	observers := make([]func(S), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.stateMu.Unlock()

	for _, fn := range observers {
		fn(next)
	}

	if s.timing == AfterReducer {
		io.Run(s)
	}
}

func isContractViolation(err error) bool {
	return errors.Is(err, middleware.ErrNotWired) ||
		errors.Is(err, middleware.ErrClosed) ||
		errors.Is(err, reader.ErrNotWired) ||
		errors.Is(err, effect.ErrTokenNotComparable)
}

// Flush waits until every action dispatched so far, and every action those
// dispatched synchronously, has been processed. Effects still running are not
// waited for.
func (s *Store[A, S]) Flush(ctx context.Context) error {
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for s.pending.Load() > 0 {
		if s.closed.Load() {
			return ErrClosed
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%d actions pending: %w", s.pending.Load(), ctx.Err())
		case <-tick.C:
		}
	}
	return nil
}

// State returns the latest published state.
func (s *Store[A, S]) State() S {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Observe calls fn on the worker goroutine with every new state. fn must not
// block. The returned function stops the observation.
func (s *Store[A, S]) Observe(fn func(S)) (stop func()) {
	s.stateMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.stateMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.stateMu.Lock()
			delete(s.observers, id)
			s.stateMu.Unlock()
		})
	}
}

// Close stops processing, drops queued actions and closes the middleware,
// which cancels every running effect. Closing twice is harmless. Close must
// not be called from an observer or a synchronous effect, as it waits for the
// worker to stop.
func (s *Store[A, S]) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.cancel()
	<-s.done
	middleware.Close(s.middleware)

	dropped := len(s.drain())
	s.logger.Debug("store closed", zap.Int("dropped", dropped))
}
