// Package ratelimit provides a cooperative fixed-window rate limiter for
// outbound API requests.
//
// The limiter admits at most a fixed number of request starts per time
// window. When the quota for the current window is exhausted, callers
// suspend until the window resets. This is a deliberate fixed-window design
// (not sliding window or token bucket): bursts at window boundaries are an
// accepted, documented approximation for client-side politeness limits.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// FixedWindow is a fixed-window rate limiter.
//
// Window tracking: the limiter maintains the window start time and the
// number of admissions in the current window. On each Wait call, if the
// window has elapsed the counter resets; otherwise, if the quota is
// exhausted, the caller sleeps for the remaining window time and the
// window then resets. The check-and-increment is mutex-guarded because
// callers run on real OS threads.
//
// All time operations go through a clock.Clock so the window logic can be
// driven deterministically in tests with a mock clock.
type FixedWindow struct {
	limit  int
	window time.Duration
	clock  clock.Clock

	mu          sync.Mutex
	windowStart time.Time
	count       int
}

// New creates a fixed-window limiter that admits at most limit calls per
// window. It returns an error for non-positive limits or windows.
func New(limit int, window time.Duration) (*FixedWindow, error) {
	return NewWithClock(limit, window, clock.New())
}

// NewWithClock is like New but uses the provided clock for all time
// operations. Tests use this with a mock clock.
func NewWithClock(limit int, window time.Duration, clk clock.Clock) (*FixedWindow, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %d", limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("time window must be positive, got %v", window)
	}

	return &FixedWindow{
		limit:       limit,
		window:      window,
		clock:       clk,
		windowStart: clk.Now(),
	}, nil
}

// Limit returns the maximum number of admissions per window.
func (fw *FixedWindow) Limit() int {
	return fw.limit
}

// Window returns the window duration.
func (fw *FixedWindow) Window() time.Duration {
	return fw.window
}

// Wait blocks until the caller is admitted under the window quota or the
// context is canceled. It returns nil on admission and ctx.Err() if the
// context ends while suspended.
func (fw *FixedWindow) Wait(ctx context.Context) error {
	fw.mu.Lock()

	now := fw.clock.Now()
	elapsed := now.Sub(fw.windowStart)

	switch {
	case elapsed >= fw.window:
		// Window expired: start a fresh one.
		fw.windowStart = now
		fw.count = 0
	case fw.count >= fw.limit:
		// Quota exhausted: suspend for the remainder of the window.
		remaining := fw.window - elapsed
		fw.mu.Unlock()

		timer := fw.clock.Timer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		fw.mu.Lock()
		fw.windowStart = fw.clock.Now()
		fw.count = 0
	}

	fw.count++
	fw.mu.Unlock()
	return nil
}
