package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/effect"
	"github.com/on-the-ground/rex_ive_go/middleware"
	"github.com/on-the-ground/rex_ive_go/pure"
	"github.com/on-the-ground/rex_ive_go/reducer"
	"github.com/on-the-ground/rex_ive_go/store"
	"github.com/on-the-ground/rex_ive_go/stream"
)

const searchToken = "search"

var words = strings.Fields(`
	reactive reaction reader reducer redux reentrant registry replace
	request resolve result retry round route runtime
	scheduler search sequence signal source state store stream subscribe
`)

type event interface{ isEvent() }

type typed struct{ Query string }

type answered struct {
	Query   string
	Hits    []string
	Started time.Time
}

type failed struct {
	Query string
	Err   error
}

func (typed) isEvent()    {}
func (answered) isEvent() {}
func (failed) isEvent()   {}

type searchState struct {
	Query    string
	Hits     []string
	Answered int
	Failed   int
}

type searchDeps struct {
	index   func(query string) []string
	latency time.Duration
	meter   *tachymeter.Tachymeter
	started *atomic.Int64
}

func (d searchDeps) lookup(ctx context.Context, query string) ([]string, error) {
	t := time.NewTimer(d.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
	}
	if query == "" {
		return nil, errors.New("empty query")
	}
	return d.index(query), nil
}

func prefixMatch(query string) []string {
	var hits []string
	for _, w := range words {
		if strings.HasPrefix(w, query) {
			hits = append(hits, w)
		}
	}
	return hits
}

var reduceSearch reducer.Reducer[event, searchState] = func(ev event, s searchState) searchState {
	switch ev := ev.(type) {
	case typed:
		s.Query = ev.Query
	case answered:
		if ev.Query == s.Query {
			s.Hits = ev.Hits
		}
		s.Answered++
	case failed:
		s.Failed++
	}
	return s
}

func onSearch(ev event, from action.Source, c middleware.HandlerContext[searchState, searchDeps, event]) effect.Effect[searchDeps, event] {
	switch ev := ev.(type) {
	case typed:
		c.Dependencies.started.Add(1)
		started := time.Now()
		return effect.Task(
			func(ctx context.Context, d searchDeps) ([]string, error) { return d.lookup(ctx, ev.Query) },
			func(r stream.Result[[]string]) action.Dispatched[event] {
				if r.Err != nil {
					return action.NewDispatched[event](failed{Query: ev.Query, Err: r.Err}, from.WithInfo("search failed"))
				}
				return action.NewDispatched[event](answered{Query: ev.Query, Hits: r.Value, Started: started}, from.WithInfo("search answered"))
			},
		).WithToken(searchToken)
	case answered:
		return effect.FireAndForget[searchDeps, event](func(d searchDeps) {
			d.meter.AddTime(time.Since(ev.Started))
		})
	}
	return effect.DoNothing[searchDeps, event]()
}

func runSearch(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	keystrokes := int(cmd.Uint(keystrokesKey))
	typing := cmd.Duration(typingKey)
	deps := searchDeps{
		index:   pure.Tableize(prefixMatch, 64),
		latency: cmd.Duration(latencyKey),
		meter:   tachymeter.New(&tachymeter.Config{Size: keystrokes}),
		started: &atomic.Int64{},
	}

	mw := middleware.OnAction[event, event, searchState, searchDeps](onSearch).
		Inject(deps, middleware.WithLogger(logger.Named("effects")))
	s := store.New(searchState{}, reduceSearch, middleware.Middleware[event, event, searchState](mw),
		store.WithLogger(logger.Named("store")),
		store.WithQueueHint(keystrokes))

	text := strings.Repeat("reducer ", keystrokes/8+1)
	for i := 1; i <= keystrokes; i++ {
		query := strings.TrimSpace(text[:i])
		if j := strings.LastIndexByte(query, ' '); j >= 0 {
			query = query[j+1:]
		}
		s.Dispatch(typed{Query: query}, action.Here("keystroke"))
		select {
		case <-ctx.Done():
			s.Close()
			return ctx.Err()
		case <-time.After(typing):
		}
	}

	if err := settle(ctx, mw, deps.latency*10); err != nil {
		logger.Warn("searches still running", zap.Error(err))
	}
	flushCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := s.Flush(flushCtx); err != nil {
		logger.Warn("answers not reduced", zap.Error(err))
	}
	s.Close()

	final := s.State()
	started := deps.started.Load()
	finished := int64(final.Answered + final.Failed)

	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("search as you type: %q", final.Query))
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"keystrokes", "started", "cancelled", "answered", "failed", "hits"})
	tbl.AppendRow(table.Row{
		humanize.Comma(int64(keystrokes)),
		humanize.Comma(started),
		humanize.Comma(started - finished),
		humanize.Comma(int64(final.Answered)),
		humanize.Comma(int64(final.Failed)),
		strings.Join(final.Hits, " "),
	})
	tbl.Render()

	if final.Answered > 0 {
		calc := deps.meter.Calc()
		lat := table.NewWriter()
		lat.SetTitle("keystroke to answer")
		lat.SetOutputMirror(os.Stdout)
		lat.AppendHeader(table.Row{"samples", "avg", "min", "p75", "p99", "max"})
		lat.AppendRow(table.Row{calc.Count, calc.Time.Avg, calc.Time.Min, calc.Time.P75, calc.Time.P99, calc.Time.Max})
		lat.Render()
	}
	return nil
}

// settle waits until no effect is running any more.
func settle[In, Out, S, D any](ctx context.Context, mw *middleware.EffectMiddleware[In, Out, S, D], limit time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for {
		keyed, unkeyed := mw.InFlight()
		if keyed+unkeyed == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%d keyed, %d unkeyed: %w", keyed, unkeyed, ctx.Err())
		case <-tick.C:
		}
	}
}
