package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterWindow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Fatalf("third request in the window should be limited")
	}
	if !rl.Allow("b") {
		t.Fatalf("other clients are counted separately")
	}

	// steady traffic does not extend the window
	now = now.Add(61 * time.Second)
	if !rl.Allow("a") {
		t.Fatalf("new window should reset the count")
	}

	m := rl.GetMetrics()
	if m.TotalHits != 1 || m.ClientCount != 2 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestLimiterCleanup(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	defer rl.Stop()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("a")

	now = now.Add(11 * time.Minute)
	rl.cleanupStaleEntries()
	if rl.ActiveClients() != 0 {
		t.Fatalf("stale client not removed")
	}
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1})
	defer rl.Stop()

	h := rl.Middleware(func(r *http.Request) string { return "client" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests || rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("second request status = %d", rec.Code)
	}
}
