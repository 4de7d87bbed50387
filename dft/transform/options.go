package transform

import (
	"sync"

	"github.com/cwbudde/algo-dft/dft/engine"
	"github.com/cwbudde/algo-dft/dft/engine/gonumfft"
)

var (
	defaultGatewayOnce sync.Once
	defaultGateway     *engine.Gateway
)

// DefaultGateway returns the gateway used when no WithGateway option is
// given: a gonum engine behind the process-wide engine lock.
func DefaultGateway() *engine.Gateway {
	defaultGatewayOnce.Do(func() {
		defaultGateway = engine.NewGateway(gonumfft.New())
	})
	return defaultGateway
}

// Config holds construction settings for a Transform.
type Config struct {
	Gateway   *engine.Gateway
	Effort    engine.Effort
	Target    int
	HasTarget bool
}

// Option mutates a Config.
type Option func(*Config)

// WithGateway selects the engine gateway used for allocation and planning.
func WithGateway(gw *engine.Gateway) Option {
	return func(cfg *Config) {
		if gw != nil {
			cfg.Gateway = gw
		}
	}
}

// WithEffort sets the planning-effort hint.
func WithEffort(effort engine.Effort) Option {
	return func(cfg *Config) {
		cfg.Effort = effort
	}
}

// WithTarget sets an explicit transform length for inverse transforms.
func WithTarget(n int) Option {
	return func(cfg *Config) {
		cfg.Target = n
		cfg.HasTarget = true
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := Config{Effort: engine.EffortEstimate}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Gateway == nil {
		cfg.Gateway = DefaultGateway()
	}
	return cfg
}
