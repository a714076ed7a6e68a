package core

// limiter.go bounds how many years are built at once.
//
// A year holds its four raw tables and their join in memory until it is
// combined. The limiter caps that footprint with a semaphore: a year waits
// for a slot before loading and frees it once assembled.

import (
	"context"
	"sync"
)

// DefaultParallelism builds one year at a time.
const DefaultParallelism = 1

// YearLimiter restricts concurrent year builds using a semaphore pattern.
type YearLimiter struct {
	semaphore chan struct{}

	mu     sync.RWMutex
	active int
}

// NewYearLimiter creates a limiter allowing at most maxConcurrent years in
// flight. A non-positive value selects DefaultParallelism.
func NewYearLimiter(maxConcurrent int) *YearLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultParallelism
	}
	return &YearLimiter{semaphore: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a slot is free or ctx is done.
// The caller MUST call Release() when the year is built (use defer).
func (l *YearLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire.
func (l *YearLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of years currently being built.
func (l *YearLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum number of concurrent years.
func (l *YearLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *YearLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}
