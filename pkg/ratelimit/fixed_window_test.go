package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"popstats/pkg/ratelimit"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		limit   int
		window  time.Duration
		wantErr bool
	}{
		{name: "valid", limit: 10, window: time.Second, wantErr: false},
		{name: "zero limit", limit: 0, window: time.Second, wantErr: true},
		{name: "negative limit", limit: -1, window: time.Second, wantErr: true},
		{name: "zero window", limit: 10, window: 0, wantErr: true},
		{name: "negative window", limit: 10, window: -time.Second, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimit.New(tt.limit, tt.window)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%d, %v) error = %v, wantErr %v", tt.limit, tt.window, err, tt.wantErr)
			}
		})
	}
}

func TestWaitAdmitsUpToLimit(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	fw, err := ratelimit.NewWithClock(2, time.Second, mock)
	if err != nil {
		t.Fatalf("NewWithClock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Both admissions within the quota must return without suspension.
	// The mock clock never advances, so any suspension would hit the
	// context timeout and fail the test.
	for i := 0; i < 2; i++ {
		if err := fw.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i+1, err)
		}
	}
}

func TestWaitSuspendsUntilWindowResets(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	fw, err := ratelimit.NewWithClock(2, time.Second, mock)
	if err != nil {
		t.Fatalf("NewWithClock: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := fw.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i+1, err)
		}
	}

	// Third call must suspend for the remaining window time.
	done := make(chan error, 1)
	go func() {
		done <- fw.Wait(ctx)
	}()

	// Give the goroutine time to register its timer on the mock clock.
	time.Sleep(50 * time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("Wait returned before the window reset: %v", err)
	default:
	}

	mock.Add(time.Second)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait after window reset: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not resume after the window elapsed")
	}
}

func TestWaitResetsAfterElapsedWindow(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	fw, err := ratelimit.NewWithClock(1, time.Second, mock)
	if err != nil {
		t.Fatalf("NewWithClock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := fw.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	// Once the window has fully elapsed, the next admission is immediate.
	mock.Add(time.Second)
	if err := fw.Wait(ctx); err != nil {
		t.Fatalf("Wait after elapsed window: %v", err)
	}
}

func TestWaitReturnsOnContextCancel(t *testing.T) {
	t.Parallel()

	mock := clock.NewMock()
	fw, err := ratelimit.NewWithClock(1, time.Minute, mock)
	if err != nil {
		t.Fatalf("NewWithClock: %v", err)
	}

	if err := fw.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fw.Wait(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Wait error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}
}
