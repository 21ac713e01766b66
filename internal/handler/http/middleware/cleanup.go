package middleware

import (
	"context"
	"log/slog"
	"time"
)

// StartCleanup periodically evicts idle entries from the rate limiter until
// the context is cancelled. Run it in a goroutine alongside the server.
func StartCleanup(ctx context.Context, rl *IPRateLimiter, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("rate limit cleanup stopped")
			return
		case <-ticker.C:
			removed := rl.Cleanup(maxIdle)
			if removed > 0 {
				slog.Debug("rate limit cleanup completed",
					slog.Int("removed", removed),
					slog.Int("active", rl.ActiveKeys()))
			}
		}
	}
}
