// Package retry wraps an embedding service with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/siddhantttt/context-iq/internal/core/domain"
	"github.com/siddhantttt/context-iq/internal/core/ports/driven"
	"github.com/siddhantttt/context-iq/internal/logger"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultMaxDelay    = 20 * time.Second
	DefaultJitter      = 0.5
)

// Policy describes how often and how patiently a call is retried.
type Policy struct {
	// MaxAttempts counts the first call. Values below one mean one attempt.
	MaxAttempts int

	// Delays double from BaseDelay up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Jitter spreads each delay d over [d*(1-Jitter), d*(1+Jitter)].
	Jitter float64

	// Retryable decides whether err is worth another attempt.
	// Nil uses IsRetryable.
	Retryable func(err error) bool

	// timer paces the waits between attempts. Replaced in tests.
	timer backoff.Timer
}

// DefaultPolicy returns 3 attempts with delays between 1s and 20s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Jitter:      DefaultJitter,
	}
}

// FromSettings builds a policy from the configured retry settings.
func FromSettings(s domain.RetrySettings) Policy {
	p := DefaultPolicy()
	if s.MaxAttempts > 0 {
		p.MaxAttempts = s.MaxAttempts
	}
	if s.BaseDelay > 0 {
		p.BaseDelay = s.BaseDelay
	}
	if s.MaxDelay > 0 {
		p.MaxDelay = s.MaxDelay
	}
	return p
}

// IsRetryable reports whether err is transient. Context errors and
// requests the provider rejected outright are final.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, domain.ErrProviderRejected):
		return false
	default:
		return true
	}
}

// newBackOff builds the schedule for one Do call.
func (p Policy) newBackOff(ctx context.Context, attempts int) backoff.BackOffContext {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     p.BaseDelay,
		RandomizationFactor: p.Jitter,
		Multiplier:          2,
		MaxInterval:         p.MaxDelay,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do calls fn until it succeeds, returns a final error or the attempts run out.
// The last error from fn is returned unchanged, also when ctx ends mid-wait.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempts := max(p.MaxAttempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	var last error
	attempt := 0
	operation := func() error {
		attempt++
		last = fn(ctx)
		if last != nil && !retryable(last) {
			return backoff.Permanent(last)
		}
		return last
	}
	notify := func(err error, wait time.Duration) {
		logger.Debug("retry: attempt %d/%d failed: %v; retrying in %s", attempt, attempts, err, wait)
	}

	err := backoff.RetryNotifyWithTimer(operation, p.newBackOff(ctx, attempts), notify, p.timer)
	if err != nil && last != nil {
		return last
	}
	return err
}

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService retries Embed and EmbedBatch of the wrapped service.
// Ping and Close pass straight through.
type EmbeddingService struct {
	driven.EmbeddingService
	policy Policy
}

// Wrap returns svc with policy applied to its embedding calls.
func Wrap(svc driven.EmbeddingService, policy Policy) *EmbeddingService {
	return &EmbeddingService{EmbeddingService: svc, policy: policy}
}

// Embed retries the wrapped Embed.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.EmbeddingService.Embed(ctx, text)
		return err
	})
	return out, err
}

// EmbedBatch retries the wrapped EmbedBatch as a whole.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.EmbeddingService.EmbedBatch(ctx, texts)
		return err
	})
	return out, err
}
