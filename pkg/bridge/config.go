package bridge

import "time"

// Config holds bridge settings with environment variable support.
type Config struct {
	Upstream       string        `env:"UPSTREAM_URL" envDefault:"wss://generativelanguage.googleapis.com"`
	ConnectTimeout time.Duration `env:"BRIDGE_CONNECT_TIMEOUT" envDefault:"30s"`
	CloseTimeout   time.Duration `env:"BRIDGE_CLOSE_TIMEOUT" envDefault:"5s"`
	WriteTimeout   time.Duration `env:"BRIDGE_WRITE_TIMEOUT" envDefault:"10s"`
	MaxPending     int           `env:"BRIDGE_MAX_PENDING" envDefault:"1024"`
	DialRetries    int           `env:"BRIDGE_DIAL_RETRIES" envDefault:"2"`
}

// DefaultConfig returns a Config with the package defaults.
func DefaultConfig() Config {
	return Config{
		Upstream:       DefaultUpstream,
		ConnectTimeout: DefaultConnectTimeout,
		CloseTimeout:   DefaultCloseTimeout,
		WriteTimeout:   DefaultWriteTimeout,
		MaxPending:     DefaultMaxPending,
		DialRetries:    DefaultDialRetries,
	}
}

// NewFromConfig creates a Bridge from configuration. Additional options
// override config values.
func NewFromConfig(cfg Config, opts ...Option) (*Bridge, error) {
	configOpts := []Option{
		WithMaxPending(cfg.MaxPending),
		WithDialRetries(cfg.DialRetries),
	}
	if cfg.Upstream != "" {
		configOpts = append(configOpts, WithUpstream(cfg.Upstream))
	}
	if cfg.ConnectTimeout > 0 {
		configOpts = append(configOpts, WithConnectTimeout(cfg.ConnectTimeout))
	}
	if cfg.CloseTimeout > 0 {
		configOpts = append(configOpts, WithCloseTimeout(cfg.CloseTimeout))
	}
	if cfg.WriteTimeout > 0 {
		configOpts = append(configOpts, WithWriteTimeout(cfg.WriteTimeout))
	}

	b := New(append(configOpts, opts...)...)
	if err := validateUpstream(b.upstream); err != nil {
		return nil, err
	}
	return b, nil
}
