package effect

// Context is what a producer sees when its effect is subscribed.
type Context[D, A any] struct {
	Dependencies D
	cancel       func(token any)
}

// NewContext builds the runtime context. cancel is invoked with the token of
// the effect to stop; it may be nil when nothing can be cancelled.
func NewContext[D, A any](deps D, cancel func(token any)) Context[D, A] {
	return Context[D, A]{Dependencies: deps, cancel: cancel}
}

// Cancel stops the effect running under token, if any.
func (c Context[D, A]) Cancel(token any) {
	if c.cancel != nil {
		c.cancel(token)
	}
}

// ToCancel returns an effect that cancels token once subscribed and emits
// nothing. Merging it in front of a new effect replaces the old one without
// the caller knowing whether it is still running.
func (c Context[D, A]) ToCancel(token any) Effect[D, A] {
	return FireAndForget[D, A](func(D) { c.Cancel(token) })
}
