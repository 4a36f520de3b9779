// Package ratelimit throttles calls to an LLMService with a token bucket.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
	"github.com/custodia-labs/quest-cli/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// DefaultBackoff is how long calls pause after the provider reports a rate
// limit.
const DefaultBackoff = 30 * time.Second

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or less disables throttling.
	RequestsPerSecond float64

	// BurstSize is the maximum burst size. Values below 1 are treated as 1.
	BurstSize int

	// Backoff is the pause after a rate-limit error (default: 30s).
	Backoff time.Duration
}

// LLMService wraps another LLMService and spaces out Chat calls.
type LLMService struct {
	inner   driven.LLMService
	limiter *rate.Limiter
	backoff time.Duration

	mu      sync.Mutex
	retryAt time.Time
	now     func() time.Time
}

// Wrap returns inner unchanged when throttling is disabled.
func Wrap(inner driven.LLMService, cfg Config) driven.LLMService {
	if inner == nil || cfg.RequestsPerSecond <= 0 {
		return inner
	}
	return New(inner, cfg)
}

// New creates a throttled LLMService.
func New(inner driven.LLMService, cfg Config) *LLMService {
	burst := cfg.BurstSize
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	return &LLMService{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
		backoff: backoff,
		now:     time.Now,
	}
}

// Chat waits for a token, then delegates. A rate-limit error from the
// provider pauses later calls for the backoff period.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}

	reply, err := s.inner.Chat(ctx, messages, opts)
	if errors.Is(err, domain.ErrRateLimited) {
		s.mu.Lock()
		s.retryAt = s.now().Add(s.backoff)
		s.mu.Unlock()
	}
	return reply, err
}

func (s *LLMService) wait(ctx context.Context) error {
	s.mu.Lock()
	pause := s.retryAt.Sub(s.now())
	s.mu.Unlock()

	if pause > 0 {
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrRateLimited, ctx.Err())
		case <-timer.C:
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRateLimited, err)
	}
	return nil
}

// ModelName returns the wrapped model name.
func (s *LLMService) ModelName() string {
	return s.inner.ModelName()
}

// Ping is not throttled.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (s *LLMService) Close() error {
	return s.inner.Close()
}
