package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/effect"
	"github.com/on-the-ground/rex_ive_go/middleware"
	"github.com/on-the-ground/rex_ive_go/reducer"
	"github.com/on-the-ground/rex_ive_go/store"
)

type fibStart struct{ Count int }

func fibonacci(n int) []int {
	out := make([]int, 0, n)
	a, b := 1, 1
	for range n {
		out = append(out, a)
		a, b = b, a+b
	}
	return out
}

func runFib(ctx context.Context, cmd *cli.Command) error {
	logger := newLogger(cmd)
	defer func() { _ = logger.Sync() }()

	count := int(cmd.Uint(countKey))
	mw := middleware.OnAction[any, any, []int, struct{}](
		func(act any, from action.Source, _ middleware.HandlerContext[[]int, struct{}, any]) effect.Effect[struct{}, any] {
			start, ok := act.(fibStart)
			if !ok {
				return effect.DoNothing[struct{}, any]()
			}
			seq := fibonacci(start.Count)
			out := make([]action.Dispatched[any], len(seq))
			for i, n := range seq {
				out[i] = action.NewDispatched[any](n, from)
			}
			return effect.Sequence[struct{}](out...)
		},
	).Inject(struct{}{}, middleware.WithLogger(logger.Named("effects")))

	collect := reducer.Reducer[any, []int](func(act any, s []int) []int {
		if n, ok := act.(int); ok {
			return append(append([]int(nil), s...), n)
		}
		return s
	})
	s := store.New([]int(nil), collect, middleware.Middleware[any, any, []int](mw), store.WithLogger(logger.Named("store")))
	defer s.Close()

	done := make(chan struct{})
	stop := s.Observe(func(ns []int) {
		if len(ns) == count {
			close(done)
		}
	})
	defer stop()

	s.Dispatch(fibStart{Count: count}, action.Here())
	if count > 0 {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return fmt.Errorf("only %d of %d numbers reduced", len(s.State()), count)
		}
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"#", "value"})
	for i, n := range s.State() {
		tbl.AppendRow(table.Row{i + 1, humanize.Comma(int64(n))})
	}
	tbl.Render()
	return nil
}
