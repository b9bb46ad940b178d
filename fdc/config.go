package fdc

import "time"

// InactivityTimeout is the default coarse inactivity interval after
// which the link is considered timed out (FDC_TIMEOUT in the original
// source).
const InactivityTimeout = 2000 * time.Millisecond

// Config holds Server configuration.
type Config struct {
	// Listener receives notifications. Defaults to a BaseListener
	// (all no-ops) if not supplied.
	Listener Listener

	// Logger is used for diagnostic logging. Optional.
	Logger Logger

	// InactivityTimeout is the coarse, rearmable one-shot timer
	// duration. Defaults to InactivityTimeout.
	InactivityTimeout time.Duration

	// StatLogInterval is how many STAT commands the engine processes
	// between debug-level counter dumps, reproducing the original
	// server's "every ten STAT packets" diagnostic line. Zero
	// disables the periodic dump.
	StatLogInterval int
}

func defaultConfig() Config {
	return Config{
		Listener:          BaseListener{},
		InactivityTimeout: InactivityTimeout,
		StatLogInterval:   10,
	}
}

// Option is a functional option for configuring a Server.
type Option func(*Config)

// WithListener sets the notification listener.
func WithListener(l Listener) Option {
	return func(c *Config) {
		if l != nil {
			c.Listener = l
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithInactivityTimeout overrides the inactivity timer duration.
// Non-positive values are ignored rather than treated as an error.
func WithInactivityTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.InactivityTimeout = d
		}
	}
}

// WithStatLogInterval overrides how often STAT counters are logged at
// debug level. Zero or negative disables the periodic dump.
func WithStatLogInterval(n int) Option {
	return func(c *Config) {
		c.StatLogInterval = n
	}
}
