package store

import "go.uber.org/zap"

// Timing decides when the IO a middleware returned runs relative to the
// reducer. Either way Handle sees the action before the reducer does.
type Timing int

const (
	// AfterReducer runs the IO once the new state is published, so effects
	// reading state see the action applied.
	AfterReducer Timing = iota
	// BeforeReducer runs the IO first, so effects reading state synchronously
	// see the state the action arrived in.
	BeforeReducer
)

func (t Timing) String() string {
	switch t {
	case AfterReducer:
		return "after-reducer"
	case BeforeReducer:
		return "before-reducer"
	default:
		return "unknown"
	}
}

type options struct {
	logger    *zap.Logger
	timing    Timing
	queueHint int
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithTiming(t Timing) Option {
	return func(o *options) { o.timing = t }
}

// WithQueueHint preallocates room for n pending actions. The queue grows past
// it when needed.
func WithQueueHint(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueHint = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:    zap.NewNop(),
		timing:    AfterReducer,
		queueHint: 16,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
