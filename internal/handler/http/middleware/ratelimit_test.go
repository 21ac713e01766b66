package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"popstats/internal/handler/http/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/population", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIPRateLimiterEnforcesBurst(t *testing.T) {
	t.Parallel()

	rl := middleware.NewIPRateLimiter(middleware.IPRateLimiterConfig{
		RequestsPerSecond: 0.001, // effectively no refill within the test
		Burst:             3,
		Enabled:           true,
	})
	handler := rl.Middleware()(okHandler())

	for i := 0; i < 3; i++ {
		if rec := doRequest(handler, "203.0.113.7:1234"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec := doRequest(handler, "203.0.113.7:1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After header")
	}
}

func TestIPRateLimiterIsolatesClients(t *testing.T) {
	t.Parallel()

	rl := middleware.NewIPRateLimiter(middleware.IPRateLimiterConfig{
		RequestsPerSecond: 0.001,
		Burst:             1,
		Enabled:           true,
	})
	handler := rl.Middleware()(okHandler())

	if rec := doRequest(handler, "203.0.113.1:1000"); rec.Code != http.StatusOK {
		t.Fatalf("first client: status = %d, want 200", rec.Code)
	}
	if rec := doRequest(handler, "203.0.113.1:1000"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("first client second request: status = %d, want 429", rec.Code)
	}
	// A different IP has its own bucket.
	if rec := doRequest(handler, "203.0.113.2:1000"); rec.Code != http.StatusOK {
		t.Fatalf("second client: status = %d, want 200", rec.Code)
	}
}

func TestIPRateLimiterDisabled(t *testing.T) {
	t.Parallel()

	rl := middleware.NewIPRateLimiter(middleware.IPRateLimiterConfig{
		RequestsPerSecond: 0.001,
		Burst:             1,
		Enabled:           false,
	})
	handler := rl.Middleware()(okHandler())

	for i := 0; i < 5; i++ {
		if rec := doRequest(handler, "203.0.113.9:1"); rec.Code != http.StatusOK {
			t.Fatalf("disabled limiter rejected request %d with %d", i, rec.Code)
		}
	}
}

func TestIPRateLimiterFailsOpenOnBadRemoteAddr(t *testing.T) {
	t.Parallel()

	rl := middleware.NewIPRateLimiter(middleware.IPRateLimiterConfig{
		RequestsPerSecond: 0.001,
		Burst:             1,
		Enabled:           true,
	})
	handler := rl.Middleware()(okHandler())

	// No port, so SplitHostPort fails; requests must pass through.
	for i := 0; i < 3; i++ {
		if rec := doRequest(handler, "not-an-addr"); rec.Code != http.StatusOK {
			t.Fatalf("fail-open request %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestCleanupEvictsIdleVisitors(t *testing.T) {
	t.Parallel()

	rl := middleware.NewIPRateLimiter(middleware.DefaultIPRateLimiterConfig())
	handler := rl.Middleware()(okHandler())

	doRequest(handler, "203.0.113.3:1")
	doRequest(handler, "203.0.113.4:1")
	if got := rl.ActiveKeys(); got != 2 {
		t.Fatalf("active keys = %d, want 2", got)
	}

	time.Sleep(20 * time.Millisecond)
	removed := rl.Cleanup(10 * time.Millisecond)
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if got := rl.ActiveKeys(); got != 0 {
		t.Errorf("active keys after cleanup = %d, want 0", got)
	}
}
