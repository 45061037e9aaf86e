package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func limitedRequest(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", nil)
	req.Header.Set("X-Real-IP", ip)
	return req
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	handler := rl.Limit(okHandler())

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, limitedRequest("10.0.0.1"))
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d within burst: expected 200, got %d", i+1, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, limitedRequest("10.0.0.1"))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once burst is spent, got %d", rr.Code)
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Limit(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, limitedRequest("10.0.0.1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("first kiosk: expected 200, got %d", rr.Code)
	}

	// The first kiosk's spent budget must not affect the second.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, limitedRequest("10.0.0.2"))
	if rr.Code != http.StatusOK {
		t.Fatalf("second kiosk: expected 200, got %d", rr.Code)
	}
}

func TestRateLimiterCleanupResetsBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	handler := rl.Limit(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), limitedRequest("10.0.0.1"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, limitedRequest("10.0.0.1"))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before cleanup, got %d", rr.Code)
	}

	rl.CleanupLimiters()

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, limitedRequest("10.0.0.1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected a fresh budget after cleanup, got %d", rr.Code)
	}
}

func TestClientIPPrefersProxyHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.9:4000"

	if ip := clientIP(req); ip != "192.0.2.9:4000" {
		t.Errorf("expected remote addr fallback, got %q", ip)
	}

	req.Header.Set("X-Real-IP", "10.1.1.1")
	if ip := clientIP(req); ip != "10.1.1.1" {
		t.Errorf("expected X-Real-IP, got %q", ip)
	}

	req.Header.Set("X-Forwarded-For", "10.2.2.2")
	if ip := clientIP(req); ip != "10.2.2.2" {
		t.Errorf("expected X-Forwarded-For to win, got %q", ip)
	}
}
