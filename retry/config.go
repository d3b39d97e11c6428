// Package retry provides retry logic with exponential backoff for
// provider-unavailable errors at the adapter layer.
//
// Retry here is deliberately separate from the router's fallback hop:
// the router switches models after a failure, while retry re-attempts
// the same backend. Adapters enable it per provider record; it is
// disabled by default.
package retry

import (
	"math"
	"math/rand"
	"time"
)

// Config holds retry configuration parameters.
type Config struct {
	// MaxAttempts is the maximum number of attempts. The initial
	// request counts as attempt 1.
	MaxAttempts int

	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	Multiplier float64

	// Jitter adds randomness to prevent thundering herd.
	// Delay is multiplied by (1 + random(-jitter, +jitter)).
	Jitter float64
}

// DefaultConfig returns the default retry configuration:
// 3 attempts, 500ms initial delay, 10s max delay, 2x multiplier, 10% jitter.
// The defaults are conservative because the router may still attempt a
// fallback model after all attempts fail.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
	}
}

// Disabled returns a configuration that disables retries (single attempt).
func Disabled() Config {
	return Config{MaxAttempts: 1}
}

// ForMaxRetries derives a configuration from a provider record's
// MaxRetries field: n retries on top of the initial attempt.
// n <= 0 disables retry.
func ForMaxRetries(n int) Config {
	if n <= 0 {
		return Disabled()
	}
	cfg := DefaultConfig()
	cfg.MaxAttempts = n + 1
	return cfg
}

// Delay calculates the delay for a given attempt number (0-indexed).
// Formula: min(maxDelay, initialDelay * multiplier^attempt) * (1 + jitter)
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := float64(c.InitialDelay) * math.Pow(c.Multiplier, float64(attempt))
	if delay > float64(c.MaxDelay) {
		delay = float64(c.MaxDelay)
	}

	if c.Jitter > 0 {
		jitterFactor := 1.0 + (rand.Float64()*2-1)*c.Jitter
		delay *= jitterFactor
	}

	return time.Duration(delay)
}
