package middleware

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/effect"
	"github.com/on-the-ground/rex_ive_go/middleware/internal/registry"
	"github.com/on-the-ground/rex_ive_go/reader"
	"github.com/on-the-ground/rex_ive_go/stream"
)

// OnAction decides which effect, if any, an action starts.
type OnAction[In, Out, S, D any] func(act In, from action.Source, c HandlerContext[S, D, Out]) effect.Effect[D, Out]

// Inject wires f with its dependencies.
func (f OnAction[In, Out, S, D]) Inject(deps D, opts ...Option) *EffectMiddleware[In, Out, S, D] {
	o := newOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	return &EffectMiddleware[In, Out, S, D]{
		onAction:   f,
		deps:       deps,
		logger:     o.logger,
		keyed:      registry.NewKeyed[*stream.Subscription](o.registry.Shards),
		unkeyed:    registry.NewBag[*stream.Subscription](),
		ctx:        ctx,
		cancelRoot: cancel,
	}
}

// Reader defers Inject until the dependencies are known.
func (f OnAction[In, Out, S, D]) Reader(opts ...Option) reader.Reader[D, Middleware[In, Out, S]] {
	return reader.New(func(deps D) Middleware[In, Out, S] {
		return f.Inject(deps, opts...)
	})
}

// HandlerContext is what OnAction sees besides the action itself.
type HandlerContext[S, D, Out any] struct {
	State        GetState[S]
	Dependencies D
	cancel       func(token any)
}

// Cancel stops the effect running under token now.
func (c HandlerContext[S, D, Out]) Cancel(token any) {
	if c.cancel != nil {
		c.cancel(token)
	}
}

// ToCancel returns an effect that stops the effect running under token once
// it is subscribed.
func (c HandlerContext[S, D, Out]) ToCancel(token any) effect.Effect[D, Out] {
	return effect.FireAndForget[D, Out](func(D) { c.Cancel(token) })
}

// EffectMiddleware subscribes to the effects its OnAction returns and keeps
// them until they finish, are replaced, are cancelled or the middleware is
// closed. At most one effect runs per token.
type EffectMiddleware[In, Out, S, D any] struct {
	onAction OnAction[In, Out, S, D]
	deps     D
	logger   *zap.Logger

	keyed   *registry.Keyed[*stream.Subscription]
	unkeyed *registry.Bag[*stream.Subscription]

	ctx        context.Context
	cancelRoot context.CancelFunc
	closed     atomic.Bool
}

func (m *EffectMiddleware[In, Out, S, D]) mustBeWired() {
	if m == nil || m.onAction == nil || m.keyed == nil {
		panic(ErrNotWired)
	}
}

// Handle asks OnAction for an effect. The effect is started, and the previous
// one with the same token cancelled, only when the returned IO runs.
func (m *EffectMiddleware[In, Out, S, D]) Handle(act In, from action.Source, state GetState[S]) IO[Out] {
	m.mustBeWired()
	if m.closed.Load() {
		panic(fmt.Errorf("%w: cannot handle %T from %s", ErrClosed, act, from))
	}
	return NewIO(func(out Dispatcher[Out]) {
		if m.closed.Load() {
			m.logger.Warn("effect dropped, middleware closed", zap.Object("source", from))
			return
		}
		c := HandlerContext[S, D, Out]{State: state, Dependencies: m.deps, cancel: m.Cancel}
		m.start(m.onAction(act, from, c), from, out)
	})
}

func (m *EffectMiddleware[In, Out, S, D]) start(e effect.Effect[D, Out], from action.Source, out Dispatcher[Out]) {
	s, ok := e.Run(effect.NewContext[D, Out](m.deps, m.Cancel))
	if !ok {
		return
	}
	token := e.Token()
	if token != nil {
		// the old effect must be gone before the new one can emit anything
		if old, found := m.keyed.Take(token); found {
			old.Cancel()
			m.logger.Debug("effect replaced",
				zap.Any("token", token),
				zap.Stringer("subscription", old.ID()),
				zap.Object("source", from))
		}
	}

	sub := s.Subscribe(m.ctx, func(d action.Dispatched[Out]) {
		out.Dispatch(d.Action, d.Source)
	}, nil)

	if token != nil {
		if displaced, found := m.keyed.Put(token, sub); found {
			displaced.Cancel()
		}
	} else {
		m.unkeyed.Add(sub)
	}

	if m.closed.Load() {
		m.forget(token, sub)
		sub.Cancel()
		return
	}
	if sub.IsDone() {
		m.forget(token, sub)
		return
	}

	m.logger.Debug("effect started",
		zap.Any("token", token),
		zap.Stringer("subscription", sub.ID()),
		zap.Object("source", from))
	go func() {
		<-sub.Done()
		m.forget(token, sub)
		m.logger.Debug("effect finished",
			zap.Any("token", token),
			zap.Stringer("subscription", sub.ID()),
			zap.Bool("cancelled", sub.Cancelled()),
			zap.Duration("elapsed", sub.Span().Duration()))
	}()
}

func (m *EffectMiddleware[In, Out, S, D]) forget(token any, sub *stream.Subscription) {
	if token != nil {
		m.keyed.RemoveIf(token, sub)
		return
	}
	m.unkeyed.Remove(sub)
}

// Cancel stops the effect running under token. Unknown tokens are ignored.
func (m *EffectMiddleware[In, Out, S, D]) Cancel(token any) {
	m.mustBeWired()
	if token == nil || !reflect.TypeOf(token).Comparable() {
		return
	}
	if sub, found := m.keyed.Take(token); found {
		sub.Cancel()
		m.logger.Debug("effect cancelled", zap.Any("token", token), zap.Stringer("subscription", sub.ID()))
	}
}

// Close cancels every running effect, with or without a token. Handle must not
// be called afterwards. Closing twice is harmless.
func (m *EffectMiddleware[In, Out, S, D]) Close() {
	m.mustBeWired()
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	keyed := m.keyed.Drain()
	unkeyed := m.unkeyed.Drain()
	for _, sub := range keyed {
		sub.Cancel()
	}
	for _, sub := range unkeyed {
		sub.Cancel()
	}
	m.cancelRoot()
	m.logger.Debug("effect middleware closed", zap.Int("keyed", len(keyed)), zap.Int("unkeyed", len(unkeyed)))
}

// InFlight reports how many effects are running, by kind.
func (m *EffectMiddleware[In, Out, S, D]) InFlight() (keyed, unkeyed int) {
	m.mustBeWired()
	return m.keyed.Len(), m.unkeyed.Len()
}
