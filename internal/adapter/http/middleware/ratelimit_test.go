package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterSetsRetryAfter(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, time.Minute, nil)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/holds", nil)
	req.RemoteAddr = "10.0.0.1:4000"

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	if first.Code != http.StatusNoContent {
		t.Fatalf("expected first request through, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if got := second.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
}

func TestRateLimiterCleanupForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1, time.Minute, nil)
	rl.now = func() time.Time { return now }

	rl.getLimiter("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.getLimiter("10.0.0.2")

	now = now.Add(45 * time.Second)
	if removed := rl.Cleanup(); removed != 1 {
		t.Fatalf("expected one idle client removed, got %d", removed)
	}
	if _, ok := rl.limiters["10.0.0.2"]; !ok {
		t.Fatalf("expected recently seen client to be kept")
	}
}

func TestClientIPStripsPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	if got := clientIP(req); got != "192.168.1.5" {
		t.Fatalf("expected host only, got %q", got)
	}

	req.RemoteAddr = "192.168.1.5"
	if got := clientIP(req); got != "192.168.1.5" {
		t.Fatalf("expected bare address unchanged, got %q", got)
	}
}
