package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

// RetryPolicy is a bounded exponential backoff. The zero value and
// SingleAttempt both make exactly one attempt.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

var SingleAttempt = RetryPolicy{MaxAttempts: 1}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Backoff returns the wait before the given retry (1-based).
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if p.InitialBackoff <= 0 || retry < 1 {
		return 0
	}
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}

	wait := float64(p.InitialBackoff)
	for i := 1; i < retry; i++ {
		wait *= multiplier
		if p.MaxBackoff > 0 && time.Duration(wait) >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && time.Duration(wait) > p.MaxBackoff {
		return p.MaxBackoff
	}
	return time.Duration(wait)
}

// Do runs fn until it succeeds, returns a non-retryable error, the
// attempts run out or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, log logger.Logger, name string, fn func(ctx context.Context) error) error {
	var lastErr error
	total := p.attempts()

	for attempt := 1; attempt <= total; attempt++ {
		if attempt > 1 {
			wait := p.Backoff(attempt - 1)
			if log != nil {
				log.Debugf("Retrying %s in %v (attempt %d/%d)", name, wait, attempt, total)
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: %w (last error: %v)", name, ctx.Err(), lastErr)
			case <-timer.C:
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !Retryable(err) || ctx.Err() != nil {
			return err
		}
		if log != nil && attempt < total {
			log.Warnf("%s failed (attempt %d/%d): %v", name, attempt, total, err)
		}
	}

	if total == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", total, lastErr)
}

// Retryable reports whether err is worth another attempt: network errors,
// 429 and 5xx responses.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests || statusErr.Code >= 500
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
