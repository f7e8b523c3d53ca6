package core

// delivery_limiter.go caps concurrent calls to the delivery service.
//
// Each email or PDF request holds one semaphore slot for the duration of the
// outbound call. When all slots are taken a request waits up to maxWait and
// then fails with ErrTooManyDeliveries. WaitForDrain lets shutdown wait for
// in-flight deliveries.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyDeliveries is returned when no delivery slot frees up in time.
var ErrTooManyDeliveries = errors.New("too many deliveries in progress, please try again later")

// DefaultMaxConcurrentDeliveries is the default limit for parallel outbound calls.
const DefaultMaxConcurrentDeliveries = 4

// DefaultMaxDeliveryWait is how long to wait for a slot before rejecting.
const DefaultMaxDeliveryWait = 10 * time.Second

// DeliveryLimiter limits parallel outbound deliveries with a semaphore.
type DeliveryLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active map[DeliveryKind]int
}

// NewDeliveryLimiter creates a limiter allowing at most maxConcurrent deliveries.
func NewDeliveryLimiter(maxConcurrent int, maxWait time.Duration) *DeliveryLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentDeliveries
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxDeliveryWait
	}

	return &DeliveryLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
		active:    make(map[DeliveryKind]int),
	}
}

// Acquire takes a slot for a delivery of the given kind.
// The caller MUST call Release with the same kind when done (use defer).
func (l *DeliveryLimiter) Acquire(ctx context.Context, kind DeliveryKind) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active[kind]++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyDeliveries
	}
}

// Release frees a slot taken by Acquire.
func (l *DeliveryLimiter) Release(kind DeliveryKind) {
	l.mu.Lock()
	l.active[kind]--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of in-flight deliveries of every kind.
func (l *DeliveryLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, n := range l.active {
		total += n
	}
	return total
}

// WaitForDrain blocks until no delivery is in flight or ctx is done.
func (l *DeliveryLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DeliveryLimiterStatus is a snapshot of the limiter for monitoring.
type DeliveryLimiterStatus struct {
	Email         int `json:"email"`
	PDF           int `json:"pdf"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *DeliveryLimiter) Status() DeliveryLimiterStatus {
	l.mu.RLock()
	email, pdf := l.active[DeliveryEmail], l.active[DeliveryPDF]
	l.mu.RUnlock()

	return DeliveryLimiterStatus{
		Email:         email,
		PDF:           pdf,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
