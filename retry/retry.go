// Package retry runs an operation under a bounded retry policy.
//
// Only the initiating request of a stream is meant to be wrapped: once data has
// been delivered to a caller, replaying the request would duplicate output.
package retry

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"
)

// Policy controls how many times an operation is attempted and how long to wait
// between attempts.
type Policy struct {
	// MaxAttempts includes the initial attempt. If <= 1, retries are disabled.
	MaxAttempts int

	// StatusCodes lists the HTTP statuses treated as transient.
	// If empty, only 429 is retried.
	StatusCodes map[int]bool

	// Retryable marks additional errors as transient. It is consulted before
	// StatusCodes.
	Retryable func(error) bool

	// Backoff computes the sleep before the next attempt.
	// If nil, DefaultBackoff() is used.
	Backoff Backoff

	// RespectRetryAfter uses the server supplied delay when the error carries one.
	RespectRetryAfter bool

	// MaxRetryAfter caps the server supplied delay. If zero, no cap is applied.
	MaxRetryAfter time.Duration

	// OnRetry is called before each sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Default returns the policy used when a handler is not given one: two attempts,
// retrying only rate-limit responses.
func Default() Policy {
	return Policy{
		MaxAttempts:       2,
		StatusCodes:       defaultStatusCodes(),
		Backoff:           DefaultBackoff(),
		RespectRetryAfter: true,
		MaxRetryAfter:     30 * time.Second,
	}
}

func defaultStatusCodes() map[int]bool {
	return map[int]bool{
		http.StatusTooManyRequests: true,
	}
}

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatus() int
}

// RetryAfterer is implemented by errors that carry a server supplied delay.
type RetryAfterer interface {
	RetryAfter() (time.Duration, bool)
}

// Transient reports whether p would retry err.
func (p Policy) Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable != nil && p.Retryable(err) {
		return true
	}

	var sc StatusCoder
	if !errors.As(err, &sc) {
		return false
	}
	statuses := p.StatusCodes
	if len(statuses) == 0 {
		statuses = defaultStatusCodes()
	}
	return statuses[sc.HTTPStatus()]
}

// delay returns the sleep before attempt+1 after err.
func (p Policy) delay(attempt int, err error) time.Duration {
	if p.RespectRetryAfter {
		var ra RetryAfterer
		if errors.As(err, &ra) {
			if d, ok := ra.RetryAfter(); ok {
				if p.MaxRetryAfter > 0 && d > p.MaxRetryAfter {
					d = p.MaxRetryAfter
				}
				return d
			}
		}
	}
	b := p.Backoff
	if b == nil {
		b = DefaultBackoff()
	}
	return b.Next(attempt)
}

// Do calls fn until it succeeds, returns a non-transient error, the attempt
// ceiling is reached or ctx is done. attempt starts at 1. Do returns the result
// of the last call and the number of calls made.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var (
		zero T
		err  error
	)
	for attempt := 1; ; attempt++ {
		var v T
		v, err = fn(ctx, attempt)
		if err == nil {
			return v, attempt, nil
		}
		if attempt >= maxAttempts || !p.Transient(err) {
			return zero, attempt, err
		}

		d := p.delay(attempt, err)
		if p.OnRetry != nil {
			p.OnRetry(attempt, d, err)
		}
		if serr := sleep(ctx, d); serr != nil {
			return zero, attempt, errors.Join(err, serr)
		}
	}
}

// Backoff computes the sleep before a retry.
type Backoff interface {
	// Next returns how long to sleep before retrying attempt+1.
	// attempt starts at 1 for the first retry.
	Next(attempt int) time.Duration
}

// ConstantBackoff always waits the same duration.
type ConstantBackoff time.Duration

func (b ConstantBackoff) Next(int) time.Duration { return time.Duration(b) }

// ExponentialBackoff doubles Base per attempt up to Max, with +/- Jitter.
type ExponentialBackoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64 // 0..1
}

func DefaultBackoff() Backoff {
	return ExponentialBackoff{
		Base:   time.Second,
		Max:    10 * time.Second,
		Jitter: 0.2,
	}
}

func (b ExponentialBackoff) Next(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	base := b.Base
	if base <= 0 {
		base = time.Second
	}
	maxDelay := b.Max
	if maxDelay <= 0 {
		maxDelay = 10 * time.Second
	}

	// base * 2^(attempt-1)
	d := base
	for i := 1; i < attempt; i++ {
		if d >= maxDelay/2 {
			d = maxDelay
			break
		}
		d *= 2
	}
	if d > maxDelay {
		d = maxDelay
	}

	j := b.Jitter
	if j <= 0 {
		return d
	}
	if j > 1 {
		j = 1
	}

	f := 1 + (jitterFloat64()*2-1)*j
	if f < 0 {
		f = 0
	}
	return time.Duration(float64(d) * f)
}

var (
	jitterMu  sync.Mutex
	jitterRng = rand.New(rand.NewPCG(seed64(), seed64()))
)

func seed64() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err == nil {
		return binary.LittleEndian.Uint64(b[:])
	}
	return uint64(time.Now().UnixNano())
}

func jitterFloat64() float64 {
	jitterMu.Lock()
	defer jitterMu.Unlock()
	return jitterRng.Float64()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
