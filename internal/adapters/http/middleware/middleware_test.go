package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(2, time.Hour)
	defer rl.Close()

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("first two requests must pass")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request within the interval must be limited")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other IPs are independent")
	}
}

// TestRateLimiter_RefillsUnderSteadyTraffic verifies that frequent requests do not starve the refill.
func TestRateLimiter_RefillsUnderSteadyTraffic(t *testing.T) {
	rl := NewRateLimiter(1, 40*time.Millisecond)
	defer rl.Close()

	allowed := 0
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		if rl.Allow("10.0.0.1") {
			allowed++
		}
		time.Sleep(10 * time.Millisecond)
	}
	if allowed < 3 {
		t.Errorf("allowed = %d, want tokens refilled every interval", allowed)
	}
}

// TestRateLimit_KeysByHost verifies that different ports of one client share a bucket.
func TestRateLimit_KeysByHost(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	defer rl.Close()
	handler := RateLimit(rl)(okHandler(http.StatusOK))

	for i, addr := range []string{"192.0.2.1:1111", "192.0.2.1:2222"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		want := http.StatusOK
		if i == 1 {
			want = http.StatusTooManyRequests
		}
		if rr.Code != want {
			t.Errorf("request %d status = %d, want %d", i, rr.Code, want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(okHandler(http.StatusOK)).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rr.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}

// TestCSRF_RejectsFormWithoutToken verifies form posts need a token while JSON posts are exempt.
func TestCSRF_RejectsFormWithoutToken(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	handler := CSRF(key, false, []string{"localhost:8080"})(okHandler(http.StatusOK))

	form := httptest.NewRequest("POST", "/subscribe", strings.NewReader("email=a@b"))
	form.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, form)
	if rr.Code != http.StatusForbidden {
		t.Errorf("form status = %d, want 403", rr.Code)
	}

	api := httptest.NewRequest("POST", "/api/x", strings.NewReader("{}"))
	api.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, api)
	if rr.Code != http.StatusOK {
		t.Errorf("json status = %d, want 200", rr.Code)
	}

	get := httptest.NewRecorder()
	handler.ServeHTTP(get, httptest.NewRequest("GET", "/", nil))
	if get.Code != http.StatusOK {
		t.Errorf("GET status = %d, want 200", get.Code)
	}
}
