package terminal

import (
	"errors"
	"fmt"
	"time"

	"github.com/8bitGames/tl3600/logger"
)

// Default configuration values.
const (
	// DefaultBaudRate matches the TL3600 factory line speed.
	DefaultBaudRate = 115200

	// DefaultAckTimeout is the wait for the single-byte handshake reply
	// after writing a frame.
	DefaultAckTimeout = 3 * time.Second

	// DefaultResponseTimeout is the wait for a full response frame after
	// the handshake. Card transactions involve the cardholder (insert,
	// PIN, remove), so this is deliberately long.
	DefaultResponseTimeout = 30 * time.Second

	// DefaultRetryLimit is the number of handshake retries after the
	// first attempt.
	DefaultRetryLimit = 3

	// DefaultReadBufferSize is the chunk size for reads off the port.
	DefaultReadBufferSize = 4096
)

// Configuration range limits.
const (
	MinAckTimeout = 100 * time.Millisecond
	MaxAckTimeout = 30 * time.Second

	MinResponseTimeout = 1 * time.Second
	MaxResponseTimeout = 120 * time.Second

	MaxRetryLimit = 9
)

// Config holds all configuration for a terminal connection.
type Config struct {
	portName string

	// terminalID is stamped into every frame header built through
	// convenience helpers; it identifies this kiosk to the terminal.
	terminalID string

	baudRate        int
	ackTimeout      time.Duration
	responseTimeout time.Duration
	retryLimit      int
	readBufferSize  int

	logger logger.Logger
}

// NewConfig creates a terminal connection configuration for the serial
// device at portName. opts are functional options applied in order; see the
// With* functions.
func NewConfig(portName string, opts ...Option) (*Config, error) {
	if portName == "" {
		return nil, errors.New("terminal: port name must not be empty")
	}

	cfg := &Config{
		portName:        portName,
		baudRate:        DefaultBaudRate,
		ackTimeout:      DefaultAckTimeout,
		responseTimeout: DefaultResponseTimeout,
		retryLimit:      DefaultRetryLimit,
		readBufferSize:  DefaultReadBufferSize,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// --- Getters ---

// PortName returns the configured serial device address.
func (cfg *Config) PortName() string { return cfg.portName }

// TerminalID returns the configured terminal identifier.
func (cfg *Config) TerminalID() string { return cfg.terminalID }

// BaudRate returns the configured line speed.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// AckTimeout returns the handshake wait timeout.
func (cfg *Config) AckTimeout() time.Duration { return cfg.ackTimeout }

// ResponseTimeout returns the response frame wait timeout.
func (cfg *Config) ResponseTimeout() time.Duration { return cfg.responseTimeout }

// RetryLimit returns the number of handshake retries after the first attempt.
func (cfg *Config) RetryLimit() int { return cfg.retryLimit }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithTerminalID sets the terminal identifier stamped into frame headers.
// IDs longer than the 16-byte wire field are truncated by the codec.
func WithTerminalID(id string) Option {
	return optFunc(func(cfg *Config) error {
		cfg.terminalID = id
		return nil
	})
}

// WithBaudRate sets the serial line speed.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("terminal: baud rate %d must be positive", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithAckTimeout sets the wait for the single-byte handshake reply.
func WithAckTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinAckTimeout || d > MaxAckTimeout {
			return fmt.Errorf("terminal: ACK timeout %v out of range [%v, %v]", d, MinAckTimeout, MaxAckTimeout)
		}
		cfg.ackTimeout = d

		return nil
	})
}

// WithResponseTimeout sets the wait for a full response frame.
func WithResponseTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinResponseTimeout || d > MaxResponseTimeout {
			return fmt.Errorf("terminal: response timeout %v out of range [%v, %v]", d, MinResponseTimeout, MaxResponseTimeout)
		}
		cfg.responseTimeout = d

		return nil
	})
}

// WithRetryLimit sets the number of handshake retries after the first
// attempt. Zero disables retries entirely.
func WithRetryLimit(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < 0 || n > MaxRetryLimit {
			return fmt.Errorf("terminal: retry limit %d out of range [0, %d]", n, MaxRetryLimit)
		}
		cfg.retryLimit = n

		return nil
	})
}

// WithReadBufferSize sets the chunk size for reads off the port.
func WithReadBufferSize(size int) Option {
	return optFunc(func(cfg *Config) error {
		if size < 64 {
			return fmt.Errorf("terminal: read buffer size %d too small, need >= 64", size)
		}
		cfg.readBufferSize = size

		return nil
	})
}

// WithLogger sets the logger for the connection.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("terminal: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
