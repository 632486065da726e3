package middleware

import (
	"github.com/on-the-ground/rex_ive_go/action"
	"github.com/on-the-ground/rex_ive_go/reader"
)

type composed[In, Out, S any] struct {
	parts []Middleware[In, Out, S]
}

// Compose runs every middleware for each action, in order, and appends their
// IOs. Nested compositions are flattened and identities dropped, so Compose is
// associative and Identity is neutral on both sides.
func Compose[In, Out, S any](ms ...Middleware[In, Out, S]) Middleware[In, Out, S] {
	var parts []Middleware[In, Out, S]
	for _, m := range ms {
		switch m := m.(type) {
		case nil, identity[In, Out, S]:
		case *composed[In, Out, S]:
			parts = append(parts, m.parts...)
		default:
			parts = append(parts, m)
		}
	}
	switch len(parts) {
	case 0:
		return Identity[In, Out, S]()
	case 1:
		return parts[0]
	default:
		return &composed[In, Out, S]{parts: parts}
	}
}

func (c *composed[In, Out, S]) Handle(act In, from action.Source, state GetState[S]) IO[Out] {
	io := NoIO[Out]()
	for _, m := range c.parts {
		io = io.Append(m.Handle(act, from, state))
	}
	return io
}

func (c *composed[In, Out, S]) Close() {
	for _, m := range c.parts {
		Close(m)
	}
}

// ComposeReaders defers Compose until dependencies are injected. Injecting the
// result is the same as composing the injected readers.
func ComposeReaders[D, In, Out, S any](
	readers ...reader.Reader[D, Middleware[In, Out, S]],
) reader.Reader[D, Middleware[In, Out, S]] {
	return reader.Combine(Compose[In, Out, S], readers...)
}
