package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// GatewayConfig controls retry, backoff and timeout behavior of the gateway.
// Zero values are replaced with defaults, so tests can inject a zero-latency
// policy by setting InitialBackoff to a negative duration.
type GatewayConfig struct {
	// MaxAttempts is the total number of backend calls (including the
	// first one). Must be at least 1. Default: 3.
	MaxAttempts int

	// Timeout bounds every individual backend call. Default: 15s.
	Timeout time.Duration

	// InitialBackoff is the base delay unit between attempts. The delay
	// grows linearly: attempt n sleeps n*InitialBackoff. Default: 500ms.
	// Negative disables sleeping entirely.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed delay. Default: 5s.
	MaxBackoff time.Duration

	// ShouldRetry optionally classifies backend errors. When it returns
	// false the gateway gives up without further attempts. If nil, every
	// error except ErrUnavailable is considered retryable.
	ShouldRetry func(err error) bool
}

func (c GatewayConfig) withDefaults() GatewayConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 3
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	return c
}

// Gateway invokes a generative backend with bounded retries and normalizes
// its failure modes. It holds no per-request state and is safe for
// concurrent use.
type Gateway struct {
	backend TextGenerator
	cfg     GatewayConfig
	logger  *zap.Logger
}

func NewGateway(backend TextGenerator, cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == nil {
		backend = Unavailable{}
	}

	return &Gateway{
		backend: backend,
		cfg:     cfg.withDefaults(),
		logger:  logger,
	}
}

// Model reports the backend model identifier.
func (g *Gateway) Model() string { return g.backend.Model() }

// Invoke sends the prompt to the backend, retrying with linear backoff until
// it returns non-empty text or the attempt budget is exhausted. The returned
// error is definitive: callers can fall back to heuristics without guessing.
func (g *Gateway) Invoke(ctx context.Context, prompt string) (*Outcome, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("prompt must not be empty")
	}

	shouldRetry := g.cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = func(err error) bool { return !errors.Is(err, ErrUnavailable) }
	}

	var (
		attempt int
		outcome *Outcome
		lastErr error
	)

	op := func() error {
		attempt++

		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()

		start := time.Now()
		text, err := g.backend.GenerateContent(attemptCtx, prompt)
		latency := time.Since(start)

		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.New("backend returned empty text")
		}

		if err != nil {
			lastErr = err
			g.logger.Warn("llm attempt failed",
				zap.Int("attempt", attempt),
				zap.Duration("latency", latency),
				zap.Error(err),
			)
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			if !shouldRetry(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		g.logger.Debug("llm attempt succeeded",
			zap.Int("attempt", attempt),
			zap.Duration("latency", latency),
			zap.Int("response_length", len(text)),
		)

		outcome = &Outcome{Text: text, Latency: latency, Attempts: attempt}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			newLinearBackOff(g.cfg.InitialBackoff, g.cfg.MaxBackoff),
			uint64(g.cfg.MaxAttempts-1),
		),
		ctx,
	)

	if err := backoff.Retry(op, policy); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("%w after %d attempt(s): %w", ErrExhausted, attempt, lastErr)
	}

	return outcome, nil
}

// linearBackOff sleeps base, 2*base, 3*base, ... between attempts, capped
// at cap. A negative base disables sleeping.
type linearBackOff struct {
	base    time.Duration
	cap     time.Duration
	attempt int
}

func newLinearBackOff(base, cap time.Duration) *linearBackOff {
	return &linearBackOff{base: base, cap: cap}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	if b.base < 0 {
		return 0
	}
	b.attempt++
	d := time.Duration(b.attempt) * b.base
	if d > b.cap {
		d = b.cap
	}
	return d
}

func (b *linearBackOff) Reset() { b.attempt = 0 }
