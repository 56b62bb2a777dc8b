package llmclient

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryConfig bounds how long a transient model-endpoint failure is tolerated
// before it surfaces to the caller.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	RetryableErrors []string
}

// DefaultRetryConfig covers the failure modes OpenAI-compatible gateways
// actually produce under load: rate limiting, upstream hiccups, timeouts.
// Schema violations and auth failures are not in the list; repeating those
// just burns the caller's latency budget.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
		RetryableErrors: []string{
			"timeout",
			"connection refused",
			"temporary failure",
			"429",
			"500",
			"502",
			"503",
			"504",
		},
	}
}

// RetryableFunc is one attempt of a model call.
type RetryableFunc[T any] func() (*T, error)

// WithRetry runs fn up to cfg.MaxAttempts times, sleeping an exponentially
// growing, jittered delay between attempts. Errors matching none of the
// retryable patterns abort immediately; ctx cancellation interrupts the
// sleep. The name labels log lines, nothing more.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, name string, fn RetryableFunc[T]) (*T, error) {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 1 {
				log.Info().
					Str("call", name).
					Int("attempt", attempt).
					Msg("model call recovered on retry")
			}
			return result, nil
		}

		lastErr = err

		if !retryable(err, cfg.RetryableErrors) {
			log.Debug().
				Err(err).
				Str("call", name).
				Int("attempt", attempt).
				Msg("model call failed with a non-transient error")
			return nil, err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(attempt, cfg)

		log.Warn().
			Err(err).
			Str("call", name).
			Int("attempt", attempt).
			Int("max_attempts", cfg.MaxAttempts).
			Dur("delay", delay).
			Msg("model call failed, backing off before next attempt")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%s failed after %d attempts: %w", name, cfg.MaxAttempts, lastErr)
}

// backoffDelay grows geometrically per attempt, capped at MaxDelay, with
// ±10% jitter so concurrent callers do not retry in lockstep against a
// rate-limited endpoint.
func backoffDelay(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt-1))
	delay = math.Min(delay, float64(cfg.MaxDelay))
	delay += delay * 0.1 * (2.0*rand.Float64() - 1.0)
	return time.Duration(delay)
}

// retryable matches the error text against the configured patterns. Gateways
// flatten HTTP status into the message, so substring matching against the
// status codes is the contract here, crude as it looks.
func retryable(err error, patterns []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, pattern := range patterns {
		if strings.Contains(msg, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}
