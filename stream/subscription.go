package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/date/v2/timespan"
)

const (
	stateActive int32 = iota
	stateCompleted
	stateCancelled
)

// Subscription is the handle of a running Stream. Cancel is idempotent and
// safe from any goroutine.
type Subscription struct {
	id        uuid.UUID
	started   time.Time
	state     atomic.Int32
	cancelFn  context.CancelFunc
	stopWatch func() bool
	done      chan struct{}

	mu          sync.Mutex
	ended       time.Time
	cancelHooks []func()
}

func newSubscription(cancelFn context.CancelFunc) *Subscription {
	return &Subscription{
		id:       uuid.New(),
		started:  time.Now(),
		cancelFn: cancelFn,
		done:     make(chan struct{}),
	}
}

// ID identifies the subscription in logs.
func (s *Subscription) ID() uuid.UUID {
	return s.id
}

// Cancel stops the producer, releases its context and runs cancel hooks on the
// calling goroutine. No value is forwarded afterwards.
func (s *Subscription) Cancel() {
	if !s.finish(stateCancelled) {
		return
	}
	s.mu.Lock()
	hooks := s.cancelHooks
	s.cancelHooks = nil
	s.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

// Done is closed once the subscription completed or was cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// IsDone reports whether the subscription has finished either way.
func (s *Subscription) IsDone() bool {
	return s.state.Load() != stateActive
}

// Completed reports whether the producer completed on its own.
func (s *Subscription) Completed() bool {
	return s.state.Load() == stateCompleted
}

// Cancelled reports whether Cancel won over completion.
func (s *Subscription) Cancelled() bool {
	return s.state.Load() == stateCancelled
}

// Span is the time between subscribing and finishing, or now while running.
func (s *Subscription) Span() timespan.TimeSpan {
	s.mu.Lock()
	end := s.ended
	s.mu.Unlock()
	if end.IsZero() {
		end = time.Now()
	}
	return timespan.BetweenTimes(s.started, end)
}

func (s *Subscription) active() bool {
	return s.state.Load() == stateActive
}

func (s *Subscription) finish(to int32) bool {
	if !s.state.CompareAndSwap(stateActive, to) {
		return false
	}
	s.mu.Lock()
	s.ended = time.Now()
	stop := s.stopWatch
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	s.cancelFn()
	close(s.done)
	return true
}

// watch keeps stop, which detaches the subscription from its parent context.
// The parent may already have cancelled the subscription on another goroutine.
func (s *Subscription) watch(stop func() bool) {
	s.mu.Lock()
	s.stopWatch = stop
	s.mu.Unlock()
	if s.IsDone() {
		stop()
	}
}

func (s *Subscription) addCancelHook(fn func()) {
	s.mu.Lock()
	switch s.state.Load() {
	case stateActive:
		s.cancelHooks = append(s.cancelHooks, fn)
		s.mu.Unlock()
	case stateCancelled:
		s.mu.Unlock()
		fn()
	default:
		s.mu.Unlock()
	}
}
