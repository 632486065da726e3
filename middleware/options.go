package middleware

import "go.uber.org/zap"

// DefaultShards is how many partitions the token registry uses unless
// configured otherwise.
const DefaultShards = 8

type RegistryConfig struct {
	Shards int // default: DefaultShards
}

func NewRegistryConfig(shards int) RegistryConfig {
	if shards <= 0 {
		shards = DefaultShards
	}
	return RegistryConfig{Shards: shards}
}

type options struct {
	logger   *zap.Logger
	registry RegistryConfig
}

// Option configures an EffectMiddleware.
type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func WithRegistryConfig(cfg RegistryConfig) Option {
	return func(o *options) {
		o.registry = NewRegistryConfig(cfg.Shards)
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:   zap.NewNop(),
		registry: NewRegistryConfig(DefaultShards),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
