// Package effect describes side effects as values.
//
// An Effect is a cold, cancellable, failure-free producer of zero or more
// dispatched actions. Building one never performs work: the producer runs only
// once a middleware subscribes to it. Fallible work must be turned into actions
// (see Task and FireAndForgetCatching) before it becomes an Effect.
//
// Effects carrying a token can be replaced or cancelled by that token while they
// run; effects without one live until they complete or their owner is closed.
//
// Example:
//
//	search := effect.Task(
//	    func(ctx context.Context, api SearchAPI) ([]Hit, error) { return api.Find(ctx, q) },
//	    func(r stream.Result[[]Hit]) action.Dispatched[Action] { ... },
//	).WithToken("search")
package effect
