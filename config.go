package xbee

import (
	"fmt"
	"log/slog"
	"time"

	"calmh.dev/xbee/api"
)

const (
	DefaultByteTimeout = 200 * time.Millisecond
	DefaultTimeout     = 4 * time.Second
	DefaultMaxWorkers  = 20
)

type Config struct {
	// Mode is the API mode the module is configured for (AP=1 or AP=2).
	Mode api.Mode

	Logger *slog.Logger

	// ByteTimeout bounds the wait for each byte once a frame has started.
	ByteTimeout time.Duration

	// MaxWorkers caps the number of listener calls running at the same
	// time. Each listener still sees frames one at a time, in order.
	MaxWorkers int

	// Timeout is used by the AT command and data helpers when the context
	// carries no deadline.
	Timeout time.Duration

	// OnParseError, if set, is called from the reader for every malformed
	// frame. It must not block.
	OnParseError func(error)
}

func DefaultConfig() Config {
	return Config{
		Mode:        api.ModeAPI,
		Logger:      slog.Default(),
		ByteTimeout: DefaultByteTimeout,
		MaxWorkers:  DefaultMaxWorkers,
		Timeout:     DefaultTimeout,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Mode == api.ModeUnknown {
		c.Mode = def.Mode
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
	if c.ByteTimeout <= 0 {
		c.ByteTimeout = def.ByteTimeout
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = def.MaxWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

func (c Config) validate() error {
	if !c.Mode.API() {
		return fmt.Errorf("%w: mode %s does not carry API frames", ErrInvalidConfig, c.Mode)
	}
	return nil
}
