package web

// limiter.go bounds the number of conversions running at once.
//
// Each conversion holds a slot for its whole request. When all slots are
// taken a request waits up to maxWait, then fails with
// ErrTooManyConversions. Drain lets shutdown wait for in-flight work.

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"
)

// ErrTooManyConversions is returned when no slot frees up in time.
var ErrTooManyConversions = errors.New("too many concurrent conversions, please try again later")

const (
	defaultMaxConversions = 4
	defaultMaxWait        = 30 * time.Second
)

// ConversionLimiter is a counting semaphore for conversion requests.
type ConversionLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewConversionLimiter allows at most maxConcurrent conversions, each
// waiting at most maxWait for a slot. Non-positive values use defaults.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConversions
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	return &ConversionLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot. The caller must Release it.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return ErrTooManyConversions
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a slot taken by Acquire.
func (l *ConversionLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active returns the number of conversions holding a slot.
func (l *ConversionLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity returns the slot count.
func (l *ConversionLimiter) Capacity() int {
	return cap(l.slots)
}

// Drain blocks until no conversion holds a slot or ctx is done.
func (l *ConversionLimiter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Middleware holds a slot for the duration of next.
func (l *ConversionLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := l.Acquire(r.Context()); err != nil {
			if errors.Is(err, ErrTooManyConversions) {
				w.Header().Set("Retry-After", "5")
			}
			respondError(w, r, err)
			return
		}
		defer l.Release()
		next.ServeHTTP(w, r)
	})
}
