package checker

import (
	"context"
	"math"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/berckan/domainfinder/internal/models"
)

// DomainChecker is the single-shot availability capability the Retrier wraps.
type DomainChecker interface {
	Check(ctx context.Context, domain string) models.DomainResult
}

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier checks a domain with a fixed pre-attempt throttle and exponential
// backoff between failed attempts. Confirmed outcomes are never retried.
type Retrier struct {
	checker    DomainChecker
	baseDelay  time.Duration
	maxRetries int
	sleep      SleepFunc
	log        *zap.Logger
}

// NewRetrier creates a Retrier. maxRetries below 1 means a single attempt.
func NewRetrier(checker DomainChecker, baseDelay time.Duration, maxRetries int, log *zap.Logger) *Retrier {
	if maxRetries < 1 {
		maxRetries = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retrier{
		checker:    checker,
		baseDelay:  baseDelay,
		maxRetries: maxRetries,
		sleep:      Sleep,
		log:        log,
	}
}

// WithSleep replaces the sleep function
func (r *Retrier) WithSleep(sleep SleepFunc) *Retrier {
	r.sleep = sleep
	return r
}

// Check returns Available or Taken as soon as the checker confirms one.
// After maxRetries failed attempts it returns StatusError; callers must not
// record such a domain as either available or unavailable.
func (r *Retrier) Check(ctx context.Context, domain string) models.DomainResult {
	delays := r.schedule()
	var result models.DomainResult

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := r.sleep(ctx, r.baseDelay); err != nil {
			return interrupted(domain, attempt, err)
		}

		result = r.checker.Check(ctx, domain)
		result.Attempts = attempt + 1
		if result.Status != models.StatusError {
			return result
		}

		if attempt == r.maxRetries-1 {
			break
		}

		wait := delays.ForAttempt(float64(attempt))
		r.log.Info("retrying domain check",
			zap.String("domain", domain),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", wait),
			zap.String("error", result.Error))
		if err := r.sleep(ctx, wait); err != nil {
			return interrupted(domain, attempt+1, err)
		}
	}

	r.log.Warn("domain check failed after retries",
		zap.String("domain", domain),
		zap.Int("attempts", r.maxRetries),
		zap.String("error", result.Error))
	result.Status = models.StatusError
	return result
}

// schedule yields base, 2*base, 4*base, ... without capping or jitter.
func (r *Retrier) schedule() *backoff.Backoff {
	base := r.baseDelay
	if base <= 0 {
		base = time.Nanosecond
	}
	ceiling := time.Duration(float64(base) * math.Pow(2, float64(r.maxRetries)))
	return &backoff.Backoff{
		Min:    base,
		Max:    ceiling,
		Factor: 2,
		Jitter: false,
	}
}

func interrupted(domain string, attempts int, err error) models.DomainResult {
	return models.DomainResult{
		Domain:    domain,
		Status:    models.StatusError,
		CheckedAt: time.Now(),
		Attempts:  attempts,
		Error:     err.Error(),
	}
}
